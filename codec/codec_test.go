package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type artifact struct {
	K         int         `json:"k"`
	Centroids [][]float64 `json:"centroids"`
	Names     []string    `json:"names"`
	Converged bool        `json:"converged"`
}

func sample() artifact {
	return artifact{
		K:         2,
		Centroids: [][]float64{{0.1, -1.25}, {3, 1e-9}},
		Names:     []string{"Tenure", "Category:Books"},
		Converged: true,
	}
}

func TestCodecs_Interchangeable(t *testing.T) {
	codecs := []Codec{JSON{}, GoJSON{}}

	for _, enc := range codecs {
		for _, dec := range codecs {
			t.Run(enc.Name()+"->"+dec.Name(), func(t *testing.T) {
				data, err := enc.Marshal(sample())
				require.NoError(t, err)

				var got artifact
				require.NoError(t, dec.Unmarshal(data, &got))
				assert.Equal(t, sample(), got)
			})
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, Default.Name(), c.Name())

	_, ok = ByName("msgpack")
	assert.False(t, ok)
}

func TestMarshalPretty(t *testing.T) {
	data, err := MarshalPretty(nil, map[string]int{"k": 3})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": 3\n}", string(data))
}

func TestMarshal_RejectsNaN(t *testing.T) {
	_, err := JSON{}.Marshal(math.NaN())
	assert.Error(t, err)

	assert.Panics(t, func() { MustMarshal(JSON{}, math.Inf(1)) })
}
