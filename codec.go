package archive

import (
	"errors"
	"reflect"
)

// ContentType is the MIME type of the binary archive encoding.
const ContentType = "application/x-archive"

// Codec provides content-type aware marshaling.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// binaryCodec implements Codec with the archive encoding.
type binaryCodec struct {
	capacity int
}

// NewCodec returns the binary archive codec.
//
// Unlike Archive.Serialize, the codec follows a non-nil top-level pointer
// so that Marshal(v) and Marshal(&v) agree, as they do for text codecs.
func NewCodec(opts ...Option) Codec {
	cfg := newConfig(opts)
	return &binaryCodec{capacity: cfg.capacity}
}

// ContentType returns the MIME type for the archive encoding.
func (c *binaryCodec) ContentType() string {
	return ContentType
}

// Marshal encodes v into a fresh buffer.
func (c *binaryCodec) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, newCodecError(ErrMarshal, ErrNilValue)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	p, err := planFor(rv.Type())
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	buf := NewBuffer(c.capacity)
	a := Borrow(buf)
	p.encode(a, rv)
	if err := a.Err(); err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data into v, which must be a non-nil pointer.
// Truncated data is reported as an error wrapping ErrShortBuffer.
func (c *binaryCodec) Unmarshal(data []byte, v any) (err error) {
	a := Borrow(NewBufferBytes(data))
	defer recoverShortBuffer(&err)

	a.Deserialize(v)
	if err := a.Err(); err != nil {
		return newCodecError(ErrUnmarshal, err)
	}
	return nil
}

// recoverShortBuffer converts a Buffer over-read panic into an unmarshal
// error. Any other panic, including a fixed-array length mismatch, is
// re-raised.
func recoverShortBuffer(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok && errors.Is(e, ErrShortBuffer) {
		*err = newCodecError(ErrUnmarshal, e)
		return
	}
	panic(r)
}
