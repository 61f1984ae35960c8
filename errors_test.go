package archive

import (
	"errors"
	"reflect"
	"testing"
)

func TestTypeError_Is(t *testing.T) {
	err := newTypeError(ErrUnsupportedType, reflect.TypeFor[chan int](), "")

	if !errors.Is(err, ErrUnsupportedType) {
		t.Error("TypeError should unwrap to ErrUnsupportedType")
	}

	if errors.Is(err, ErrAmbiguousType) {
		t.Error("TypeError should not match ErrAmbiguousType")
	}
}

func TestTypeError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with reason",
			err:  newTypeError(ErrIncompleteHandler, reflect.TypeFor[int](), "missing unmarshal"),
			want: "incomplete handler int: missing unmarshal",
		},
		{
			name: "type only",
			err:  newTypeError(ErrUnsupportedType, reflect.TypeFor[func()](), ""),
			want: "unsupported type func()",
		},
		{
			name: "nil type",
			err:  newTypeError(ErrNilValue, nil, ""),
			want: "nil value <nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLengthMismatchError(t *testing.T) {
	err := &LengthMismatchError{Type: reflect.TypeFor[[4]int32](), Want: 4, Got: 3}

	if !errors.Is(err, ErrLengthMismatch) {
		t.Error("LengthMismatchError should unwrap to ErrLengthMismatch")
	}
	want := "fixed array length mismatch: [4]int32 expects 4 elements, stream holds 3"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodecError_Is(t *testing.T) {
	cause := errors.New("truncated")
	err := newCodecError(ErrUnmarshal, cause)

	if !errors.Is(err, ErrUnmarshal) {
		t.Error("CodecError should unwrap to ErrUnmarshal")
	}
	if !errors.Is(err, cause) {
		t.Error("CodecError should unwrap to its cause")
	}
	if errors.Is(err, ErrMarshal) {
		t.Error("CodecError should not match ErrMarshal")
	}
}

func TestCodecError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"with cause", newCodecError(ErrMarshal, errors.New("boom")), "marshal failed: boom"},
		{"no cause", &CodecError{Err: ErrUnmarshal}, "unmarshal failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrUnsupportedType, ErrAmbiguousType, ErrIncompleteHandler, ErrHandlerConflict,
		ErrNotPointer, ErrNilValue, ErrLengthMismatch, ErrShortBuffer, ErrMarshal, ErrUnmarshal,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}
