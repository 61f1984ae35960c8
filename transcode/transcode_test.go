package transcode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/archive"
	"github.com/zoobzio/archive/codec/bson"
	"github.com/zoobzio/archive/codec/json"
	"github.com/zoobzio/archive/codec/msgpack"
	"github.com/zoobzio/archive/codec/yaml"
)

type location struct {
	Lat float64
	Lon float64
}

type account struct {
	ID      int64
	Name    string
	Active  bool
	Tags    []string
	Limits  map[string]int32
	Home    location
	Backup  *location
	Note    archive.Optional[string]
	Quota   archive.Optional[int32]
	Comment string `archive:"-"`
}

func sample() account {
	return account{
		ID:     1233124,
		Name:   "alice",
		Active: true,
		Tags:   []string{"admin", "ops"},
		Limits: map[string]int32{"read": 100, "write": 10},
		Home:   location{Lat: 52.52, Lon: 13.405},
		Backup: &location{Lat: 48.85, Lon: 2.35},
		Note:   archive.Some("vip"),
		Quota:  archive.None[int32](),
	}
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	codecs := []archive.Codec{json.New(), yaml.New(), msgpack.New(), bson.New()}

	original := sample()
	bin, err := archive.NewCodec().Marshal(original)
	require.NoError(t, err)

	for _, c := range codecs {
		t.Run(c.ContentType(), func(t *testing.T) {
			text, err := Export[account](ctx, bin, c)
			require.NoError(t, err)

			back, err := Import[account](ctx, text, c)
			require.NoError(t, err)
			assert.Equal(t, bin, back, "archive bytes changed after a round trip through %s", c.ContentType())

			var restored account
			require.NoError(t, archive.NewCodec().Unmarshal(back, &restored))
			assert.Equal(t, original, restored)
			assert.True(t, restored.Note.HasValue(), "%s dropped a present optional", c.ContentType())
			assert.False(t, restored.Quota.HasValue(), "%s invented an absent optional", c.ContentType())
		})
	}
}

func TestTranscodeBetweenTextCodecs(t *testing.T) {
	ctx := context.Background()

	original := sample()
	original.Backup = nil

	data, err := json.New().Marshal(original)
	require.NoError(t, err)

	out, err := Transcode[account](ctx, data, json.New(), yaml.New())
	require.NoError(t, err)

	var restored account
	require.NoError(t, yaml.New().Unmarshal(out, &restored))
	assert.Equal(t, original, restored)
}

func TestTranscodeErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("bad input", func(t *testing.T) {
		_, err := Transcode[account](ctx, []byte("{not json"), json.New(), yaml.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrUnmarshal))

		var ce *archive.CodecError
		assert.True(t, errors.As(err, &ce))
	})

	t.Run("truncated archive", func(t *testing.T) {
		bin, err := archive.NewCodec().Marshal(sample())
		require.NoError(t, err)

		_, err = Export[account](ctx, bin[:len(bin)-3], json.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrShortBuffer))
	})

	t.Run("unencodable target", func(t *testing.T) {
		data, err := json.New().Marshal([]int{1, 2, 3})
		require.NoError(t, err)

		_, err = Transcode[[]int](ctx, data, json.New(), bson.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, archive.ErrMarshal))
	})
}
