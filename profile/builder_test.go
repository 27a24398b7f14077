package profile

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/roster"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%04d", i+1)
	}
	return strings.Join(parts, " ")
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := NewBuilder(WithChunkSize(100), WithChunkOverlap(100))
	assert.ErrorIs(t, err, ErrInvalidChunking)

	_, err = NewBuilder(WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidChunking)

	_, err = NewBuilder(WithChunkOverlap(-1))
	assert.ErrorIs(t, err, ErrInvalidChunking)

	b, err := NewBuilder()
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, b.chunkSize)
	assert.Equal(t, DefaultChunkOverlap, b.chunkOverlap)
}

func TestChunkProperties(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	text := words(1000) // 5999 runes
	chunks, err := b.Chunk(text)
	require.NoError(t, err)

	L, C, O := utf8.RuneCountInString(text), DefaultChunkSize, DefaultChunkOverlap
	minChunks := (L - O + (C - O) - 1) / (C - O)
	assert.GreaterOrEqual(t, len(chunks), minChunks)
	assert.LessOrEqual(t, len(chunks), 2*minChunks)

	for i, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), C, "chunk %d too long", i)
	}

	for i := 1; i < len(chunks); i++ {
		prev, next := chunks[i-1], chunks[i]
		first := strings.Fields(next)[0]
		idx := strings.Index(prev, first)
		require.GreaterOrEqual(t, idx, 0, "chunk %d does not overlap its predecessor", i)
		shared := prev[idx:]
		assert.True(t, strings.HasPrefix(next, shared))
		assert.LessOrEqual(t, utf8.RuneCountInString(shared), O)
	}

	all := strings.Join(chunks, " ")
	for _, w := range strings.Fields(text) {
		assert.Contains(t, all, w)
	}
}

func TestChunkShortText(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	chunks, err := b.Chunk("a short profile")
	require.NoError(t, err)
	assert.Equal(t, []string{"a short profile"}, chunks)

	chunks, err = b.Chunk("   ")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkRunes(t *testing.T) {
	b, err := NewBuilder(WithChunkSize(10), WithChunkOverlap(2))
	require.NoError(t, err)

	chunks, err := b.Chunk("äöü äöü äöü äöü äöü")
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
}

func TestBuild(t *testing.T) {
	people := []roster.Person{
		{Name: "Zed Last", Email: "z@x.edu", Department: "Physics"},
		{Name: "No Text"},
		{Name: "Blank Text"},
		{Name: "Amy First", Title: "Professor"},
	}
	records := []core.PersonRecord{
		{Name: "Amy First CV.pdf", Text: "amy cv"},
		{Name: "Zed Last", Text: words(400)},
		{Name: "Blank Text", Text: "  \n "},
		{Name: "Unrostered", Text: "nobody joins this"},
	}

	b, err := NewBuilder()
	require.NoError(t, err)
	store, err := b.Build(people, records)
	require.NoError(t, err)

	require.Len(t, store.Profiles, 2)
	assert.Equal(t, "Zed Last", store.Profiles[0].Metadata.Name)
	assert.Equal(t, "Amy First", store.Profiles[1].Metadata.Name)
	assert.Equal(t, "amy cv", store.Profiles[1].Text)

	require.Greater(t, len(store.Passages), 2)
	last := store.Passages[len(store.Passages)-1]
	assert.Equal(t, "amy cv", last.Text)
	assert.Equal(t, core.Metadata{Name: "Amy First", Title: "Professor"}, last.Metadata)

	for _, p := range store.Passages[:len(store.Passages)-1] {
		assert.Equal(t, people[0].Metadata(), p.Metadata)
		assert.Equal(t, core.NewPassage(p.Text, p.Metadata).Id, p.Id)
	}
}

func TestBuildNoProfiles(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	_, err = b.Build([]roster.Person{{Name: "A B"}}, []core.PersonRecord{{Name: "C D", Text: "x"}})
	assert.ErrorIs(t, err, ErrNoProfiles)
}

func TestBuildCustomPolicy(t *testing.T) {
	b, err := NewBuilder(WithJoinPolicy(ExactName()))
	require.NoError(t, err)

	_, err = b.Build([]roster.Person{{Name: "A B"}}, []core.PersonRecord{{Name: "A B CV.pdf", Text: "x"}})
	assert.ErrorIs(t, err, ErrNoProfiles)
}
