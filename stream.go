package archive

import (
	"reflect"
)

// Direction is the fixed direction of a Stream.
type Direction uint8

// Stream directions.
const (
	Encode Direction = iota + 1
	Decode
)

func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	default:
		return "invalid"
	}
}

// Stream wraps an archive with a direction fixed at construction. Its And
// combinator lets a composite type list its members once for both directions:
//
//	func (p *Point) StreamArchive(s *archive.Stream) {
//		s.And(&p.X).And(&p.Y)
//	}
//
// On Encode the members belong to a copy of the value, so a handler cannot
// mutate the caller's data while writing it.
type Stream struct {
	archive *Archive
	dir     Direction
	size    uint64
}

// NewStream returns a stream over a with direction dir.
// An unknown direction stops the archive with ErrUnsupportedType.
func NewStream(a *Archive, dir Direction) *Stream {
	if dir != Encode && dir != Decode {
		a.SetError(newTypeError(ErrUnsupportedType, reflect.TypeFor[Direction](), "invalid stream direction "+dir.String()))
	}
	return &Stream{archive: a, dir: dir}
}

// NewWriter returns an encoding stream over a.
func NewWriter(a *Archive) *Stream {
	return NewStream(a, Encode)
}

// NewReader returns a decoding stream over a.
func NewReader(a *Archive) *Stream {
	return NewStream(a, Decode)
}

// Direction returns the stream's direction.
func (s *Stream) Direction() Direction {
	return s.dir
}

// Archive returns the underlying archive.
func (s *Stream) Archive() *Archive {
	return s.archive
}

// Size returns the number of bytes written through the stream so far.
// It is zero for decoding streams.
func (s *Stream) Size() uint64 {
	return s.size
}

// Err returns the error which stopped the underlying archive.
func (s *Stream) Err() error {
	return s.archive.Err()
}

// And encodes or decodes the value ref points to and returns s for chaining.
//
// ref should be a pointer. Encoding streams also accept plain values; decoding
// through anything other than a non-nil pointer stops the archive with
// ErrNotPointer. Pointer-typed members are optionals: pass a pointer to them
// (**T) to stream their presence flag.
func (s *Stream) And(ref any) *Stream {
	a := s.archive
	if a.failed() {
		return s
	}
	if ref == nil {
		a.SetError(newTypeError(ErrNilValue, nil, "cannot stream a nil interface"))
		return s
	}

	rv := reflect.ValueOf(ref)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		if s.dir == Decode {
			a.SetError(newTypeError(ErrNotPointer, rv.Type(), "decoding streams need a pointer"))
			return s
		}
		s.size += a.Serialize(ref)
		return s
	}

	s.value(rv.Elem())
	return s
}

// Fields streams each ref in order. It is shorthand for chained And calls.
func (s *Stream) Fields(refs ...any) *Stream {
	for _, ref := range refs {
		s.And(ref)
	}
	return s
}

// Value streams *v through s without boxing it in an interface.
func Value[T any](s *Stream, v *T) *Stream {
	a := s.archive
	if a.failed() {
		return s
	}
	if v == nil {
		a.SetError(newTypeError(ErrNotPointer, reflect.TypeFor[*T](), ""))
		return s
	}
	s.value(reflect.ValueOf(v).Elem())
	return s
}

// value dispatches an addressable v by direction.
func (s *Stream) value(v reflect.Value) {
	a := s.archive
	p, err := planFor(v.Type())
	if err != nil {
		a.SetError(err)
		return
	}
	switch s.dir {
	case Encode:
		s.size += p.encode(a, v)
	case Decode:
		p.decode(a, v)
	}
}
