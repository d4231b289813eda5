package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	data := []byte(strings.Repeat("C0001,Europe,2022-07-10\n", 200))

	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			compressed, err := Compress(data, typ)
			require.NoError(t, err)
			if typ != None {
				assert.Less(t, len(compressed), len(data))
			}

			out, err := Decompress(compressed, typ)
			require.NoError(t, err)
			assert.Equal(t, data, out)

			rc, err := NewReader(bytes.NewReader(compressed), typ)
			require.NoError(t, err)
			defer rc.Close()
			streamed, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, data, streamed)
		})
	}
}

func TestFromName(t *testing.T) {
	assert.Equal(t, ZSTD, FromName("lookalikes.csv.zst"))
	assert.Equal(t, LZ4, FromName("elbow.csv.lz4"))
	assert.Equal(t, None, FromName("elbow.csv"))

	for _, typ := range []Type{LZ4, ZSTD} {
		assert.Equal(t, typ, FromName("x"+typ.Extension()))
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{None, LZ4, ZSTD} {
		got, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseType("brotli")
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = Compress(nil, Type(9))
	assert.ErrorIs(t, err, ErrUnknownType)
}
