package json

import (
	"testing"

	"github.com/zoobzio/archive"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/json" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/json")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type Record struct {
		ID    int64             `json:"id"`
		Name  string            `json:"name"`
		Tags  []string          `json:"tags"`
		Attrs map[string]uint16 `json:"attrs"`
		Next  *int32            `json:"next"`
	}

	next := int32(7)
	original := Record{
		ID:    1233124,
		Name:  "test",
		Tags:  []string{"a", "b"},
		Attrs: map[string]uint16{"x": 1},
		Next:  &next,
	}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored Record
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.ID != original.ID || restored.Name != original.Name {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
	if len(restored.Tags) != 2 || restored.Attrs["x"] != 1 {
		t.Errorf("containers not restored: got %+v", restored)
	}
	if restored.Next == nil || *restored.Next != 7 {
		t.Errorf("Next = %v, want 7", restored.Next)
	}
}

func TestMarshalSortsMapKeys(t *testing.T) {
	c := New()

	data, err := c.Marshal(map[int]string{202: "two", 101: "one"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"101":"one","202":"two"}` {
		t.Errorf("Marshal() = %s, want sorted keys", data)
	}
}

func TestOptional(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		in   archive.Optional[int]
		want string
	}{
		{"present", archive.Some(222), "222"},
		{"absent", archive.None[int](), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := c.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}

			var out archive.Optional[int]
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if out != tt.in {
				t.Errorf("Unmarshal() = %+v, want %+v", out, tt.in)
			}
		})
	}
}

func TestMarshalNil(t *testing.T) {
	c := New()

	data, err := c.Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}

	if string(data) != "null" {
		t.Errorf("Marshal(nil) = %q, want %q", data, "null")
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct{}
	err := c.Unmarshal([]byte("invalid json"), &v)
	if err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
