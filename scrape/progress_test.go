package scrape

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressTracker(&buf, "people", 4, 2)

	p.Increment(1)
	assert.Empty(t, buf.String(), "ignored before Start")

	p.Start()
	p.Increment(1)
	assert.Empty(t, buf.String(), "below report interval")

	p.Increment(1)
	assert.Contains(t, buf.String(), "Progress: 2/4 people (50.0%)")

	p.Increment(10)
	assert.Equal(t, 4, p.Current(), "capped at total")

	p.Finish()
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}
