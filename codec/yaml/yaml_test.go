package yaml

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	c := New()
	if c == nil {
		t.Error("New() should return non-nil codec")
	}
}

func TestContentType(t *testing.T) {
	c := New()
	if c.ContentType() != "application/yaml" {
		t.Errorf("ContentType() = %q, want %q", c.ContentType(), "application/yaml")
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	c := New()

	type Inner struct {
		Level int `yaml:"level"`
	}
	type Record struct {
		Name  string         `yaml:"name"`
		Value int            `yaml:"value"`
		Inner Inner          `yaml:"inner"`
		Attrs map[string]int `yaml:"attrs"`
	}

	original := Record{Name: "test", Value: 42, Inner: Inner{Level: 3}, Attrs: map[string]int{"k": 9}}

	data, err := c.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var restored Record
	if err := c.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if restored.Name != original.Name || restored.Value != original.Value || restored.Inner != original.Inner {
		t.Errorf("round-trip failed: got %+v, want %+v", restored, original)
	}
	if restored.Attrs["k"] != 9 {
		t.Errorf("Attrs = %v, want k=9", restored.Attrs)
	}
}

func TestMarshalIndent(t *testing.T) {
	c := New()

	type Inner struct {
		Level int `yaml:"level"`
	}
	v := struct {
		Inner Inner `yaml:"inner"`
	}{Inner{Level: 1}}

	data, err := c.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), "\n  level: 1") {
		t.Errorf("Marshal() = %q, want two-space indentation", data)
	}
}

func TestMarshalNil(t *testing.T) {
	c := New()

	data, err := c.Marshal(nil)
	if err != nil {
		t.Fatalf("Marshal(nil) error: %v", err)
	}

	if string(data) != "null\n" {
		t.Errorf("Marshal(nil) = %q, want %q", data, "null\n")
	}
}

func TestUnmarshalTypeMismatch(t *testing.T) {
	c := New()

	type Record struct {
		Value int `yaml:"value"`
	}

	tests := []struct {
		name  string
		input string
	}{
		{"string for int", "value: not_a_number"},
		{"array for int", "value:\n  - 1\n  - 2"},
		{"map for int", "value:\n  nested: true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Record
			if err := c.Unmarshal([]byte(tt.input), &v); err == nil {
				t.Errorf("Unmarshal(%q) should return error for type mismatch", tt.input)
			}
		})
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	c := New()

	var v struct {
		Name string `yaml:"name"`
	}
	if err := c.Unmarshal([]byte("name: [invalid"), &v); err == nil {
		t.Error("Unmarshal(invalid) should return error")
	}
}
