package archive

// Storage is the byte sink/source an Archive is bound to.
//
// Both operations are synchronous and complete. The archive performs no bounds
// checking of its own: what happens on overflow or on a short read is up to the
// implementation (Buffer panics, IOStorage records a sticky error).
type Storage interface {
	// Write appends p in its entirety and returns the number of bytes written.
	Write(p []byte) int

	// Read fills p with exactly len(p) bytes, advancing the read cursor.
	Read(p []byte)
}

// Reserver is implemented by storages that accept a capacity hint before a
// container is written. It is best-effort.
type Reserver interface {
	Reserve(n int)
}

// errorer is implemented by storages that keep a sticky error.
type errorer interface {
	Err() error
}
