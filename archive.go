package archive

import (
	"io"
	"reflect"
)

// Archive is a binary serializer/deserializer bound to exactly one Storage
// for its lifetime.
//
// An Archive is not safe for concurrent use, and neither is its storage: drive
// a storage from one archive operation at a time.
//
// If an operation fails, all further operations become no-ops. A value being
// decoded when the archive stops keeps the members decoded so far; nothing
// after the failure is assigned. Err returns the error which stopped the
// archive.
type Archive struct {
	storage Storage
	owned   bool
	err     error
}

// New returns an Archive that owns an embedded, empty Buffer.
func New(opts ...Option) *Archive {
	cfg := newConfig(opts)
	return &Archive{storage: NewBuffer(cfg.capacity), owned: true}
}

// Own returns an Archive that takes ownership of s: the caller must not use s
// afterwards, and Close releases it.
func Own(s Storage) *Archive {
	return &Archive{storage: s, owned: true}
}

// Borrow returns an Archive referencing s without owning it. The caller keeps
// s alive and usable for as long as any archive or stream refers to it;
// nothing checks this at runtime.
func Borrow(s Storage) *Archive {
	return &Archive{storage: s}
}

// Storage returns the bound storage.
func (a *Archive) Storage() Storage {
	return a.storage
}

// Owned reports whether the archive owns its storage.
func (a *Archive) Owned() bool {
	return a.owned
}

// Bytes returns the unread contents of the storage when it is a *Buffer,
// and nil otherwise.
func (a *Archive) Bytes() []byte {
	if b, ok := a.storage.(*Buffer); ok {
		return b.Bytes()
	}
	return nil
}

// Close releases an owned storage that implements io.Closer.
// Closing a borrowing archive does nothing.
func (a *Archive) Close() error {
	if !a.owned {
		return nil
	}
	if c, ok := a.storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Serialize encodes v and returns the number of bytes written, including
// nested length prefixes. The count is informational.
//
// v is encoded by value: passing a pointer encodes an optional, which reads
// back only into a pointer-typed target (Deserialize(&ptr)), never through
// Deserialize(&value).
func (a *Archive) Serialize(v any) uint64 {
	if a.failed() {
		return 0
	}
	if v == nil {
		a.SetError(newTypeError(ErrNilValue, nil, "cannot serialize a nil interface"))
		return 0
	}
	rv := reflect.ValueOf(v)
	p, err := planFor(rv.Type())
	if err != nil {
		a.SetError(err)
		return 0
	}
	return p.encode(a, rv)
}

// Deserialize decodes into the value v points to. v must be a non-nil pointer.
func (a *Archive) Deserialize(v any) {
	if a.failed() {
		return
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		a.SetError(newTypeError(ErrNotPointer, reflect.TypeOf(v), ""))
		return
	}
	p, err := planFor(rv.Type().Elem())
	if err != nil {
		a.SetError(err)
		return
	}
	p.decode(a, rv.Elem())
}

// Write encodes v through a without boxing it in an interface. Unlike
// Serialize it accepts interface types T that have a registered handler.
func Write[T any](a *Archive, v T) uint64 {
	if a.failed() {
		return 0
	}
	p, err := planFor(reflect.TypeFor[T]())
	if err != nil {
		a.SetError(err)
		return 0
	}
	return p.encode(a, reflect.ValueOf(&v).Elem())
}

// Read decodes into *v through a.
func Read[T any](a *Archive, v *T) {
	if a.failed() {
		return
	}
	if v == nil {
		a.SetError(newTypeError(ErrNotPointer, reflect.TypeFor[*T](), ""))
		return
	}
	p, err := planFor(reflect.TypeFor[T]())
	if err != nil {
		a.SetError(err)
		return
	}
	p.decode(a, reflect.ValueOf(v).Elem())
}

// Err returns the error which stopped the archive, including a sticky error
// reported by the storage. It returns nil if the archive has not stopped.
func (a *Archive) Err() error {
	if a.err != nil {
		return a.err
	}
	if s, ok := a.storage.(errorer); ok {
		return s.Err()
	}
	return nil
}

// SetError stops the archive with err. Only the first error is kept.
// Handlers call it to report failures of their own.
func (a *Archive) SetError(err error) {
	if a.err == nil && err != nil {
		a.err = err
	}
}

func (a *Archive) failed() bool {
	return a.Err() != nil
}

// write passes p to the storage unless the archive has stopped.
func (a *Archive) write(p []byte) uint64 {
	if a.err != nil {
		return 0
	}
	return uint64(a.storage.Write(p))
}

// read fills p from the storage. A stopped archive yields zero bytes.
func (a *Archive) read(p []byte) {
	if a.err != nil {
		clear(p)
		return
	}
	a.storage.Read(p)
}

// reserve forwards a capacity hint to storages that accept one.
func (a *Archive) reserve(n int) {
	if r, ok := a.storage.(Reserver); ok && a.err == nil {
		r.Reserve(n)
	}
}

func (a *Archive) writeCount(n int) uint64 {
	var b [countSize]byte
	ne.PutUint64(b[:], uint64(n))
	return a.write(b[:])
}

func (a *Archive) readCount() uint64 {
	var b [countSize]byte
	a.read(b[:])
	return ne.Uint64(b[:])
}

// readLen reads a count for a variable-length container.
func (a *Archive) readLen() int {
	n := a.readCount()
	if a.failed() {
		return 0
	}
	return int(n)
}

func (a *Archive) writeBool(v bool) uint64 {
	b := [1]byte{0}
	if v {
		b[0] = 1
	}
	return a.write(b[:])
}

func (a *Archive) readBool() bool {
	var b [1]byte
	a.read(b[:])
	return b[0] != 0
}
