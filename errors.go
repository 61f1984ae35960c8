package archive

import (
	"errors"
	"fmt"
	"reflect"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedType indicates a type matches no serialization category.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrAmbiguousType indicates a type implements both customization styles.
	ErrAmbiguousType = errors.New("ambiguous type")

	// ErrIncompleteHandler indicates only one half of a marshal/unmarshal pair exists.
	ErrIncompleteHandler = errors.New("incomplete handler")

	// ErrHandlerConflict indicates a type already has a handler of the other style.
	ErrHandlerConflict = errors.New("handler conflict")

	// ErrNotPointer indicates a decode target was not a non-nil pointer.
	ErrNotPointer = errors.New("decode target must be a non-nil pointer")

	// ErrNilValue indicates a nil value was passed where one is required.
	ErrNilValue = errors.New("nil value")

	// ErrLengthMismatch indicates a fixed array was decoded with the wrong stored count.
	ErrLengthMismatch = errors.New("fixed array length mismatch")

	// ErrShortBuffer indicates a read past the end of a Buffer.
	ErrShortBuffer = errors.New("short buffer")

	// ErrMarshal indicates encoding a value failed.
	ErrMarshal = errors.New("marshal failed")

	// ErrUnmarshal indicates decoding a value failed.
	ErrUnmarshal = errors.New("unmarshal failed")
)

// TypeError reports a type that cannot be classified.
// It wraps a sentinel error (ErrUnsupportedType, ErrAmbiguousType, ErrIncompleteHandler).
type TypeError struct {
	Type   reflect.Type // Offending type
	Err    error        // Underlying sentinel error
	Reason string       // Optional detail
}

func (e *TypeError) Error() string {
	name := "<nil>"
	if e.Type != nil {
		name = e.Type.String()
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: %s", e.Err.Error(), name, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Err.Error(), name)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// LengthMismatchError is the panic value raised when a fixed array's stored
// count differs from its extent.
type LengthMismatchError struct {
	Type reflect.Type
	Want int
	Got  uint64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: %s expects %d elements, stream holds %d", ErrLengthMismatch.Error(), e.Type, e.Want, e.Got)
}

func (e *LengthMismatchError) Unwrap() error {
	return ErrLengthMismatch
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// newTypeError creates a TypeError for classification failures.
func newTypeError(sentinel error, t reflect.Type, reason string) error {
	return &TypeError{
		Type:   t,
		Err:    sentinel,
		Reason: reason,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
