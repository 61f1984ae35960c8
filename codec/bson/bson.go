// Package bson provides a BSON codec implementation.
//
// BSON documents are maps or structs at the top level; other values fail to
// marshal.
package bson

import (
	"github.com/zoobzio/archive"
	"go.mongodb.org/mongo-driver/bson"
)

// bsonCodec implements archive.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() archive.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return "application/bson"
}

// Marshal encodes v as BSON.
func (c *bsonCodec) Marshal(v any) ([]byte, error) {
	return bson.Marshal(v)
}

// Unmarshal decodes BSON data into v.
func (c *bsonCodec) Unmarshal(data []byte, v any) error {
	return bson.Unmarshal(data, v)
}
