package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name   string      `json:"name"`
	Points [][]float32 `json:"points"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
	assert.Panics(t, func() { MustByName("msgpack") })
	assert.Equal(t, "go-json", Default.Name())
}

func TestCodecsInteroperate(t *testing.T) {
	in := payload{Name: "test", Points: [][]float32{{10, 12, 4.5}, {10, 11, 10.5}}}

	data, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, JSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	data, err = JSON{}.Marshal(in)
	require.NoError(t, err)

	out = payload{}
	require.NoError(t, GoJSON{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}
