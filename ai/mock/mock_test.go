package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	a, err := embedder.EmbedText(ctx, "quantum optics")
	require.NoError(t, err)
	b, err := embedder.EmbedText(ctx, "quantum optics")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, Dimensions)
	assert.Equal(t, 2, embedder.CallCount())

	var sum float64
	for _, v := range a {
		sum += float64(v * v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4, "default vectors are unit length")
}

func TestMockEmbedder_EmbedTextsUsesEmbedTextFunc(t *testing.T) {
	embedder := NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, errors.New("boom")
		}
		return []float32{float32(len(text))}, nil
	}

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "abc"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {3}}, vectors)

	_, err = embedder.EmbedTexts(context.Background(), []string{"bad"})
	assert.Error(t, err)

	embedder.Reset()
	assert.Equal(t, 0, embedder.CallCount())
}

func TestMockGenerator(t *testing.T) {
	generator := NewMockGenerator()
	ctx := context.Background()

	out, err := generator.Generate(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "mock response (5 chars)", out)

	generator.GenerateFunc = func(ctx context.Context, prompt string) (string, error) {
		return "canned", nil
	}
	out, err = generator.Generate(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "canned", out)

	assert.Equal(t, 2, generator.CallCount())
	assert.Equal(t, []string{"hello", "second"}, generator.Prompts())

	generator.Reset()
	assert.Equal(t, 0, generator.CallCount())
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()
	require.NotNil(t, provider.Embedder())
	require.NotNil(t, provider.Generator())
	assert.NoError(t, provider.Close())

	concrete, ok := provider.(*MockProvider)
	require.True(t, ok)
	assert.Same(t, concrete.GetMockGenerator(), provider.Generator())
}
