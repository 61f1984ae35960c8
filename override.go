package archive

// Override interfaces let a type opt out of structural classification.
// When a type implements one of the two styles below, the Archive hands it
// control instead of walking its fields.
//
// A type implements exactly one style:
// 1. Marshaler + Unmarshaler: two functions, one per direction
// 2. Streamer: one function chaining members through a Stream, used for both
//
// Implementing both is reported as ErrAmbiguousType. For types you don't own,
// use RegisterFuncs or RegisterStream instead.

// Marshaler is the encode half of the function-pair style.
type Marshaler interface {
	// MarshalArchive writes the receiver through a and returns the number of
	// bytes written. The count must be accurate so that enclosing values
	// report correct sizes.
	MarshalArchive(a *Archive) uint64
}

// Unmarshaler is the decode half of the function-pair style.
type Unmarshaler interface {
	// UnmarshalArchive reads the receiver's fields back from a, in the order
	// MarshalArchive wrote them.
	UnmarshalArchive(a *Archive)
}

// Streamer is the single-body style. StreamArchive chains references to each
// member through s:
//
//	func (p *Point) StreamArchive(s *archive.Stream) {
//	    s.And(&p.X).And(&p.Y)
//	}
//
// When s encodes, the receiver is a copy of the caller's value, so an
// accidental write during encoding never reaches the original.
type Streamer interface {
	StreamArchive(s *Stream)
}
