package benchmarks

import (
	"context"
	"testing"

	"github.com/zoobzio/archive"
	"github.com/zoobzio/archive/codec/json"
	"github.com/zoobzio/archive/codec/msgpack"
	archivetest "github.com/zoobzio/archive/testing"
)

type point struct {
	X, Y, Z float64
}

func BenchmarkArchive_Serialize_Primitive(b *testing.B) {
	buf := archive.NewBuffer(64)
	a := archive.Borrow(buf)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		archive.Write(a, int64(i))
	}
}

func BenchmarkArchive_Serialize_Slice(b *testing.B) {
	values := make([]point, 256)
	for i := range values {
		values[i] = point{float64(i), float64(i * 2), float64(i * 3)}
	}
	buf := archive.NewBuffer(8 + len(values)*24)
	a := archive.Borrow(buf)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		archive.Write(a, values)
	}
}

func BenchmarkArchive_Deserialize_Slice(b *testing.B) {
	values := make([]point, 256)
	data, _ := archive.NewCodec().Marshal(values)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out []point
		archive.Read(archive.Borrow(archive.NewBufferBytes(data)), &out)
	}
}

func BenchmarkProcessor_Encode_Composite(b *testing.B) {
	proc, _ := archive.NewProcessor[archivetest.Composite]()
	v := archivetest.SampleComposite()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = proc.Encode(context.Background(), &v)
	}
}

func BenchmarkProcessor_Decode_Composite(b *testing.B) {
	proc, _ := archive.NewProcessor[archivetest.Composite]()
	v := archivetest.SampleComposite()
	data, _ := proc.Encode(context.Background(), &v)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = proc.Decode(context.Background(), data)
	}
}

func BenchmarkCodec_Marshal(b *testing.B) {
	values := make([]point, 256)
	codecs := []archive.Codec{archive.NewCodec(), json.New(), msgpack.New()}

	for _, c := range codecs {
		b.Run(c.ContentType(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = c.Marshal(values)
			}
		})
	}
}
