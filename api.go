// Package archive provides generic binary serialization driven by type shape.
//
// A value of any statically known type is encoded to a byte sink and decoded
// back from a byte source. No type information is written: the reader must
// already know the type. The encoding rule is chosen from the type's
// structure alone.
//
// # Categories
//
// Every type is assigned exactly one category. When several could apply,
// the first in this list wins:
//
//   - external: a registered handler, Marshaler+Unmarshaler, Streamer, or
//     encoding.BinaryMarshaler+BinaryUnmarshaler
//   - optional: pointers, Optional[T], or any type with HasValue/Value/Set/Reset
//   - key-value: maps, or types with Len/All (iter.Seq2)/Put
//   - sequence: slices, strings, or types with Len/All (iter.Seq)/PushBack|Add|PushFront
//   - fixed-array: Go arrays
//   - tuple: structs, fields in declaration order (tag `archive:"-"` skips one)
//   - empty: structs with no encodable fields
//   - primitive: booleans, integers, floats and complex numbers
//
// # Layout
//
//	primitive     raw host-order bytes (bool is one byte)
//	sequence      8-byte count, then each element
//	key-value     8-byte count, then key/value pairs
//	fixed-array   8-byte count (always N), then N elements
//	tuple         each field, no prefix
//	empty         nothing
//	optional      1-byte presence flag, then the value if present
//
// The layout uses host byte order and carries no version. It is meant for
// trusted data exchanged between identical builds.
//
// # Basic Usage
//
//	type Point struct {
//	    X, Y int32
//	}
//
//	a := archive.New()
//	a.Serialize(Point{1, 2})
//
//	var p Point
//	archive.Borrow(a.Storage()).Deserialize(&p)
//
// Serialize takes the value itself and Deserialize a pointer to the target.
// A pointer passed to Serialize is encoded as an optional (a presence flag,
// then the value), so it must be read back into a pointer-typed target:
//
//	a.Serialize(&p)   // flag + Point
//	var q *Point
//	r.Deserialize(&q) // not r.Deserialize(&p)
//
// # Streams
//
// A Stream fixes a direction so one member list serves both encoding and
// decoding:
//
//	func (r *Record) StreamArchive(s *archive.Stream) {
//	    s.And(&r.ID).And(&r.Name).And(&r.Tags)
//	}
//
// # Processors
//
// Processor[T] validates T once and offers context-aware Encode/Decode with
// observability signals. Use[T] caches processors per type.
//
//	proc, _ := archive.Use[Point]()
//	data, _ := proc.Encode(ctx, &Point{1, 2})
//
// # Codec Providers
//
// NewCodec returns the binary archive codec. Interchange codecs live in
// subpackages:
//
//   - codec/json - JSON encoding (application/json)
//   - codec/yaml - YAML encoding (application/yaml)
//   - codec/msgpack - MessagePack encoding (application/msgpack)
//   - codec/bson - BSON encoding (application/bson)
//
// The transcode package converts payloads between any two codecs.
package archive

import (
	"bytes"
	"context"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Processor encodes and decodes values of type T with the archive encoding.
// T is validated when the processor is created, so Encode and Decode never
// fail classification.
//
// Processors are safe for concurrent use; each call uses its own buffer.
type Processor[T any] struct {
	typeName string
	category Category
	capacity int
}

// NewProcessor creates a Processor for type T.
// It returns a *TypeError if T or any type nested in it cannot be serialized.
func NewProcessor[T any](opts ...Option) (*Processor[T], error) {
	cfg := newConfig(opts)
	typ := reflect.TypeFor[T]()

	typeName := typ.String()
	if typ.Kind() == reflect.Struct {
		// Scan first: the plan's field list is read from sentinel's metadata.
		spec := sentinel.Scan[T]()
		typeName = spec.TypeName
	}

	p, err := planFor(typ)
	if err != nil {
		return nil, err
	}

	proc := &Processor[T]{
		typeName: typeName,
		category: p.category,
		capacity: cfg.capacity,
	}
	if p.size > cfg.capacity {
		proc.capacity = p.size
	}

	emitProcessorCreated(context.Background(), typeName, p.category.String())
	return proc, nil
}

// Category returns the category T was classified as.
func (p *Processor[T]) Category() Category {
	return p.category
}

// TypeName returns the name used for T in signals.
func (p *Processor[T]) TypeName() string {
	return p.typeName
}

// Encode returns the archive encoding of *obj.
func (p *Processor[T]) Encode(ctx context.Context, obj *T) ([]byte, error) {
	start := time.Now()
	emitEncodeStart(ctx, p.typeName)

	var retErr error
	var retData []byte
	defer func() {
		emitEncodeComplete(ctx, p.typeName, len(retData), time.Since(start), retErr)
	}()

	if obj == nil {
		retErr = newCodecError(ErrMarshal, ErrNilValue)
		return nil, retErr
	}

	buf := NewBuffer(p.capacity)
	a := Borrow(buf)
	Write(a, *obj)
	if err := a.Err(); err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}

	retData = buf.Bytes()
	return retData, nil
}

// Decode returns the value encoded in data.
// Truncated data is reported as an error wrapping ErrShortBuffer.
func (p *Processor[T]) Decode(ctx context.Context, data []byte) (*T, error) {
	start := time.Now()
	emitDecodeStart(ctx, p.typeName, len(data))

	var retErr error
	defer func() {
		emitDecodeComplete(ctx, p.typeName, time.Since(start), retErr)
	}()

	var obj T
	if retErr = p.decode(Borrow(NewBufferBytes(data)), &obj); retErr != nil {
		return nil, retErr
	}
	return &obj, nil
}

// EncodeTo writes the archive encoding of *obj to s and returns the number
// of bytes written. s stays owned by the caller.
func (p *Processor[T]) EncodeTo(ctx context.Context, s Storage, obj *T) (uint64, error) {
	start := time.Now()
	emitEncodeStart(ctx, p.typeName)

	var retErr error
	var n uint64
	defer func() {
		emitEncodeComplete(ctx, p.typeName, int(n), time.Since(start), retErr)
	}()

	if obj == nil {
		retErr = newCodecError(ErrMarshal, ErrNilValue)
		return 0, retErr
	}

	a := Borrow(s)
	n = Write(a, *obj)
	if err := a.Err(); err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return n, retErr
	}
	return n, nil
}

// DecodeFrom reads one value from s into *obj.
func (p *Processor[T]) DecodeFrom(ctx context.Context, s Storage, obj *T) error {
	start := time.Now()
	emitDecodeStart(ctx, p.typeName, 0)

	var retErr error
	defer func() {
		emitDecodeComplete(ctx, p.typeName, time.Since(start), retErr)
	}()

	if obj == nil {
		retErr = newCodecError(ErrUnmarshal, ErrNotPointer)
		return retErr
	}
	retErr = p.decode(Borrow(s), obj)
	return retErr
}

func (p *Processor[T]) decode(a *Archive, obj *T) (err error) {
	defer recoverShortBuffer(&err)

	Read(a, obj)
	if err := a.Err(); err != nil {
		return newCodecError(ErrUnmarshal, err)
	}
	return nil
}

// Fingerprint returns the BLAKE2b-256 digest of *obj's encoding.
func (p *Processor[T]) Fingerprint(ctx context.Context, obj *T) ([FingerprintSize]byte, error) {
	data, err := p.Encode(ctx, obj)
	if err != nil {
		return [FingerprintSize]byte{}, err
	}
	return fingerprintBytes(data), nil
}

// Equal reports whether x and y have identical encodings.
func (p *Processor[T]) Equal(ctx context.Context, x, y *T) (bool, error) {
	xd, err := p.Encode(ctx, x)
	if err != nil {
		return false, err
	}
	yd, err := p.Encode(ctx, y)
	if err != nil {
		return false, err
	}
	return bytes.Equal(xd, yd), nil
}

// Marshal encodes v with the processor cached for T.
func Marshal[T any](ctx context.Context, v T) ([]byte, error) {
	proc, err := Use[T]()
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return proc.Encode(ctx, &v)
}

// Unmarshal decodes data into *v with the processor cached for T.
func Unmarshal[T any](ctx context.Context, data []byte, v *T) error {
	if v == nil {
		return newCodecError(ErrUnmarshal, ErrNotPointer)
	}
	proc, err := Use[T]()
	if err != nil {
		return newCodecError(ErrUnmarshal, err)
	}
	obj, err := proc.Decode(ctx, data)
	if err != nil {
		return err
	}
	*v = *obj
	return nil
}
