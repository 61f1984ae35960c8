package archive

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"gopkg.in/yaml.v3"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Optional holds a value of type T or nothing. It is the canonical
// optional-like type: encoded as a presence flag followed by the value when
// present.
//
// Any other type exposing HasValue() bool, Value() T, Set(T) and Reset() is
// classified the same way.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// HasValue reports whether a value is present.
func (o Optional[T]) HasValue() bool {
	return o.ok
}

// Value returns the held value, or the zero value when empty.
func (o Optional[T]) Value() T {
	return o.value
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// ValueOr returns the held value, or fallback when empty.
func (o Optional[T]) ValueOr(fallback T) T {
	if !o.ok {
		return fallback
	}
	return o.value
}

// Set stores v and marks the Optional present.
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.ok = true
}

// Reset clears the Optional, discarding any held value.
func (o *Optional[T]) Reset() {
	var zero T
	o.value = zero
	o.ok = false
}

// MarshalJSON encodes the held value, or null when empty.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return jsonAPI.Marshal(o.value)
}

// UnmarshalJSON resets the Optional on null and sets it otherwise.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Reset()
		return nil
	}
	var v T
	if err := jsonAPI.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Set(v)
	return nil
}

// MarshalYAML encodes the held value, or null when empty.
func (o Optional[T]) MarshalYAML() (any, error) {
	if !o.ok {
		return nil, nil
	}
	return o.value, nil
}

// UnmarshalYAML resets the Optional on null and sets it otherwise.
func (o *Optional[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		o.Reset()
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	o.Set(v)
	return nil
}

// EncodeMsgpack encodes the held value, or nil when empty.
func (o Optional[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if !o.ok {
		return enc.EncodeNil()
	}
	return enc.Encode(o.value)
}

// DecodeMsgpack resets the Optional on nil and sets it otherwise.
func (o *Optional[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	code, err := dec.PeekCode()
	if err != nil {
		return err
	}
	if code == msgpcode.Nil {
		o.Reset()
		return dec.DecodeNil()
	}
	var v T
	if err := dec.Decode(&v); err != nil {
		return err
	}
	o.Set(v)
	return nil
}

// MarshalBSONValue encodes the held value, or null when empty.
func (o Optional[T]) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !o.ok {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(o.value)
}

// UnmarshalBSONValue resets the Optional on null and sets it otherwise.
func (o *Optional[T]) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull || t == bson.TypeUndefined {
		o.Reset()
		return nil
	}
	var v T
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&v); err != nil {
		return err
	}
	o.Set(v)
	return nil
}

// Pair is a two-element tuple. It encodes as First then Second with no prefix.
type Pair[A, B any] struct {
	First  A
	Second B
}

// MakePair returns a Pair of a and b.
func MakePair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}
