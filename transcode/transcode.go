// Package transcode converts payloads between codecs through a Go type.
//
// The binary archive encoding carries no field names, so it cannot be
// inspected or edited by hand. Transcoding an archive payload to JSON or YAML
// (Export) and back (Import) makes it readable without giving up the compact
// form on the wire.
package transcode

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/archive"
)

// Transcode decodes data with from into a T and encodes it with to.
// Failures are returned as *archive.CodecError.
func Transcode[T any](ctx context.Context, data []byte, from, to archive.Codec) ([]byte, error) {
	start := time.Now()
	typeName := reflect.TypeFor[T]().String()

	var retErr error
	var retData []byte
	defer func() {
		archive.EmitTranscodeComplete(ctx, from.ContentType(), to.ContentType(), typeName,
			len(retData), time.Since(start), retErr)
	}()

	var v T
	if err := from.Unmarshal(data, &v); err != nil {
		retErr = codecError(archive.ErrUnmarshal, from, err)
		return nil, retErr
	}

	out, err := to.Marshal(&v)
	if err != nil {
		retErr = codecError(archive.ErrMarshal, to, err)
		return nil, retErr
	}

	retData = out
	return retData, nil
}

// Export converts an archive payload holding a T to the to codec.
func Export[T any](ctx context.Context, data []byte, to archive.Codec) ([]byte, error) {
	return Transcode[T](ctx, data, archive.NewCodec(), to)
}

// Import converts a payload in the from codec to the archive encoding of T.
func Import[T any](ctx context.Context, data []byte, from archive.Codec) ([]byte, error) {
	return Transcode[T](ctx, data, from, archive.NewCodec())
}

func codecError(sentinel error, c archive.Codec, cause error) error {
	return &archive.CodecError{
		Err:   sentinel,
		Cause: fmt.Errorf("%s: %w", c.ContentType(), cause),
	}
}
