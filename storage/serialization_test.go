package storage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalVector(t *testing.T) {
	t.Run("values survive exactly", func(t *testing.T) {
		vector := []float32{0, -0.5, 0.25, 1, float32(math.Pi), -1e-7, math.MaxFloat32}
		decoded, err := UnmarshalVector(MarshalVector(vector))
		require.NoError(t, err)
		assert.Equal(t, vector, decoded)
	})

	t.Run("components are fixed width", func(t *testing.T) {
		vector := make([]float32, 1536)
		for i := range vector {
			vector[i] = -0.0123 * float32(i)
		}
		data := MarshalVector(vector)
		assert.Len(t, data, 2+4*len(vector))
		assert.Len(t, MarshalVector([]float32{0, 1, -1}), 1+4*3)
	})

	t.Run("empty vector", func(t *testing.T) {
		decoded, err := UnmarshalVector(MarshalVector(nil))
		require.NoError(t, err)
		assert.Empty(t, decoded)
	})

	t.Run("truncated", func(t *testing.T) {
		data := MarshalVector([]float32{0.1, 0.2, 0.3})
		_, err := UnmarshalVector(data[:len(data)-2])
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := UnmarshalVector(nil)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, CacheKey("m", "text"), CacheKey("m", "text"))
	assert.NotEqual(t, CacheKey("m1", "text"), CacheKey("m2", "text"))
	assert.NotEqual(t, CacheKey("m", "text a"), CacheKey("m", "text b"))
}
