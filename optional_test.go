package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

func TestOptional(t *testing.T) {
	o := Some(3)
	if !o.HasValue() || o.Value() != 3 {
		t.Errorf("Some(3) = %+v", o)
	}
	if v, ok := o.Get(); !ok || v != 3 {
		t.Errorf("Get() = (%d, %v), want (3, true)", v, ok)
	}

	o.Reset()
	if o.HasValue() || o.ValueOr(-1) != -1 {
		t.Errorf("after Reset() = %+v", o)
	}

	o.Set(5)
	if o.ValueOr(-1) != 5 {
		t.Errorf("ValueOr() = %d, want 5", o.ValueOr(-1))
	}

	if None[string]().HasValue() {
		t.Error("None() should be empty")
	}
}

func TestOptionalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   Optional[string]
		want string
	}{
		{"present", Some("x"), `"x"`},
		{"absent", None[string](), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.in.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", data, tt.want)
			}

			out := Some("stale")
			if err := out.UnmarshalJSON(data); err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			if out != tt.in {
				t.Errorf("UnmarshalJSON() = %+v, want %+v", out, tt.in)
			}
		})
	}
}

type note struct {
	Text  Optional[string] `yaml:"text" msgpack:"text" bson:"text"`
	Count Optional[int32]  `yaml:"count" msgpack:"count" bson:"count"`
}

func TestOptionalInterchange(t *testing.T) {
	formats := []struct {
		name      string
		marshal   func(any) ([]byte, error)
		unmarshal func([]byte, any) error
	}{
		{"yaml", yaml.Marshal, yaml.Unmarshal},
		{"msgpack", msgpack.Marshal, msgpack.Unmarshal},
		{"bson", bson.Marshal, bson.Unmarshal},
	}
	values := []note{
		{Text: Some("hi"), Count: None[int32]()},
		{Text: None[string](), Count: Some[int32](7)},
		{Text: Some(""), Count: Some[int32](0)},
	}

	for _, f := range formats {
		t.Run(f.name, func(t *testing.T) {
			for _, in := range values {
				data, err := f.marshal(in)
				require.NoError(t, err)

				var out note
				require.NoError(t, f.unmarshal(data, &out))
				assert.Equal(t, in, out)
			}
		})
	}
}

func TestOptionalYAMLNull(t *testing.T) {
	data, err := yaml.Marshal(note{Text: Some("x")})
	require.NoError(t, err)
	assert.Contains(t, string(data), "count: null")
}

func TestPair(t *testing.T) {
	p := MakePair("k", 1.5)
	if p.First != "k" || p.Second != 1.5 {
		t.Errorf("MakePair() = %+v", p)
	}
}
