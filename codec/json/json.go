// Package json provides a JSON codec implementation.
package json

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/zoobzio/archive"
)

// api behaves like encoding/json, including sorted map keys.
var api = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonCodec implements archive.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() archive.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return "application/json"
}

// Marshal encodes v as JSON.
func (c *jsonCodec) Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (c *jsonCodec) Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}
