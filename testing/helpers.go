// Package testing provides fixtures and assertions for archive tests.
package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/archive"
)

// Level is a signed enumeration.
type Level int8

// Levels.
const (
	LevelLow Level = iota
	LevelHigh
)

// Kind is an unsigned enumeration.
type Kind uint16

// Kinds.
const (
	KindNone Kind = iota
	KindPrimary
	KindSecondary
)

// Pack wraps a value behind an unexported field, so it can only be archived
// through its function pair.
type Pack struct {
	value int32
}

// NewPack returns a Pack holding v.
func NewPack(v int32) Pack { return Pack{value: v} }

// Int returns the packed value.
func (p Pack) Int() int32 { return p.value }

// MarshalArchive implements archive.Marshaler.
func (p Pack) MarshalArchive(a *archive.Archive) uint64 {
	return archive.Write(a, p.value)
}

// UnmarshalArchive implements archive.Unmarshaler.
func (p *Pack) UnmarshalArchive(a *archive.Archive) {
	archive.Read(a, &p.value)
}

// Composite has fourteen heterogeneous members chained by one stream body.
type Composite struct {
	Int     int32
	Float   float64
	Char    byte
	Level   Level
	Kind    Kind
	Text    string
	Pair    archive.Pair[int32, string]
	Values  []int32
	Names   map[int32]string
	Pack    Pack
	Tuple   archive.Pair[Pack, float64]
	Fixed   [4]int32
	Present archive.Optional[int32]
	Absent  archive.Optional[int32]
}

// StreamArchive implements archive.Streamer.
func (c *Composite) StreamArchive(s *archive.Stream) {
	s.And(&c.Int).
		And(&c.Float).
		And(&c.Char).
		And(&c.Level).
		And(&c.Kind).
		And(&c.Text).
		And(&c.Pair).
		And(&c.Values).
		And(&c.Names).
		And(&c.Pack).
		And(&c.Tuple).
		And(&c.Fixed).
		And(&c.Present).
		And(&c.Absent)
}

// SampleComposite returns a Composite with every member set.
func SampleComposite() Composite {
	return Composite{
		Int:     1233124,
		Float:   123.1243,
		Char:    't',
		Level:   LevelHigh,
		Kind:    KindSecondary,
		Text:    "string",
		Pair:    archive.MakePair[int32, string](333, "second"),
		Values:  []int32{1, 5, 7, 9},
		Names:   map[int32]string{101: "one", 202: "two"},
		Pack:    NewPack(777),
		Tuple:   archive.MakePair(NewPack(12), 0.404),
		Fixed:   [4]int32{1, 2, 3, 4},
		Present: archive.Some[int32](222),
		Absent:  archive.None[int32](),
	}
}

// CountingStorage is an in-memory storage that records every call made to it.
type CountingStorage struct {
	archive.Buffer
	Writes   int
	Reads    int
	Reserves int
}

// Write records the call and appends p.
func (s *CountingStorage) Write(p []byte) int {
	s.Writes++
	return s.Buffer.Write(p)
}

// Read records the call and consumes len(p) bytes.
func (s *CountingStorage) Read(p []byte) {
	s.Reads++
	s.Buffer.Read(p)
}

// Reserve records the hint and grows the buffer.
func (s *CountingStorage) Reserve(n int) {
	s.Reserves++
	s.Buffer.Reserve(n)
}

// Calls returns the number of reads and writes.
func (s *CountingStorage) Calls() int {
	return s.Writes + s.Reads
}

// Encode serializes v into a fresh archive and returns the bytes.
func Encode[T any](t testing.TB, v T) []byte {
	t.Helper()
	a := archive.New()
	archive.Write(a, v)
	require.NoError(t, a.Err())
	return a.Bytes()
}

// Decode deserializes a T from data, requiring every byte to be consumed.
func Decode[T any](t testing.TB, data []byte) T {
	t.Helper()
	buf := archive.NewBufferBytes(data)
	a := archive.Borrow(buf)
	var v T
	archive.Read(a, &v)
	require.NoError(t, a.Err())
	require.Zero(t, buf.Len(), "%d trailing bytes after decode", buf.Len())
	return v
}

// RoundTrip encodes v and decodes the result into a fresh T.
func RoundTrip[T any](t testing.TB, v T) T {
	t.Helper()
	return Decode[T](t, Encode(t, v))
}

// AssertRoundTrip checks that v survives an encode/decode cycle unchanged.
func AssertRoundTrip[T any](t testing.TB, v T) bool {
	t.Helper()
	return assert.Equal(t, v, RoundTrip(t, v))
}
