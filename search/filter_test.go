package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scholarmatch/ai/mock"
	"github.com/poiesic/scholarmatch/core"
)

func sampleReport() *core.Report {
	r := &core.Report{Query: "protein folding"}
	for i, name := range []string{"Ada", "Bob", "Cy"} {
		r.Entries = append(r.Entries, core.ReportEntry{
			Rank:        i + 1,
			Metadata:    core.Metadata{Name: name, Department: "Dept " + name},
			Explanation: "because " + name,
			Score:       float32(3-i) / 10,
		})
	}
	return r
}

func filterWith(t *testing.T, response string, err error) (*Filter, *mock.MockGenerator) {
	t.Helper()
	gen := mock.NewMockGenerator()
	gen.GenerateFunc = func(_ context.Context, _ string) (string, error) {
		return response, err
	}
	f, ferr := NewFilter(mock.NewMockProviderWithServices(mock.NewMockEmbedder(), gen))
	require.NoError(t, ferr)
	return f, gen
}

func TestFilter_VerbatimSubset(t *testing.T) {
	report := sampleReport()
	f, gen := filterWith(t, `{"keep": [3, 1]}`, nil)

	out, err := f.Apply(context.Background(), report.Query, report)
	require.NoError(t, err)

	assert.Equal(t, []core.ReportEntry{report.Entries[0], report.Entries[2]}, out.Entries)
	assert.Equal(t, report.Query, out.Query)
	assert.Len(t, report.Entries, 3, "input is not modified")

	prompt := gen.Prompts()[0]
	assert.Contains(t, prompt, "User inquiry: protein folding")
	for _, e := range report.Entries {
		assert.Contains(t, prompt, e.Render())
	}
}

func TestFilter_ResponseShapes(t *testing.T) {
	cases := map[string]struct {
		response string
		want     []string
	}{
		"unknown and duplicate numbers": {`{"keep": [2, 2, 9, -1]}`, []string{"Bob"}},
		"empty keep list":               {`{"keep": []}`, nil},
		"code fence":                    {"```json\n{\"keep\": [1]}\n```", []string{"Ada"}},
		"surrounding prose":             {"Here you go: {\"keep\": [2,3]} hope that helps", []string{"Bob", "Cy"}},
		"missing opening quote":         {`{keep": [1, 2]}`, []string{"Ada", "Bob"}},
		"bare key":                      {`{keep: [3]}`, []string{"Cy"}},
		"bare array":                    {`[1, 3]`, []string{"Ada", "Cy"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f, _ := filterWith(t, tc.response, nil)
			out, err := f.Apply(context.Background(), "q", sampleReport())
			require.NoError(t, err)

			var names []string
			for _, e := range out.Entries {
				names = append(names, e.Metadata.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}
}

func TestFilter_Failures(t *testing.T) {
	for name, response := range map[string]string{
		"prose only":   "I would keep Ada and Cy.",
		"missing keep": `{"selected": [1]}`,
		"wrong type":   `{"keep": ["Ada"]}`,
		"unterminated": `{"keep": [1`,
	} {
		t.Run(name, func(t *testing.T) {
			f, gen := filterWith(t, response, nil)
			out, err := f.Apply(context.Background(), "q", sampleReport())
			assert.ErrorIs(t, err, ErrUnparseableResponse)
			assert.Nil(t, out)
			assert.Equal(t, 1, gen.CallCount(), "no retry")
		})
	}

	t.Run("backend error", func(t *testing.T) {
		boom := errors.New("down")
		f, _ := filterWith(t, "", boom)
		_, err := f.Apply(context.Background(), "q", sampleReport())
		assert.ErrorIs(t, err, boom)
	})
}

func TestFilter_EmptyReportSkipsBackend(t *testing.T) {
	f, gen := filterWith(t, `{"keep": [1]}`, nil)
	out, err := f.Apply(context.Background(), "q", &core.Report{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, out.Entries)
	assert.Equal(t, 0, gen.CallCount())
	assert.True(t, strings.HasSuffix(out.Render(), "No matching professors found.\n"))
}

func TestNewFilter(t *testing.T) {
	_, err := NewFilter(nil)
	assert.Equal(t, ErrAIProviderRequired, err)

	f, err := NewFilter(mock.NewMockProvider(), WithFilterLogger(nil), WithFilterMonitor(nil))
	require.NoError(t, err)
	assert.NotNil(t, f)
}

func TestRepairJSON(t *testing.T) {
	assert.Equal(t, `{"keep": [1]}`, repairJSON(`{keep": [1]}`))
	assert.Equal(t, `{"keep": [1]}`, repairJSON(`{keep: [1]}`))
	assert.Equal(t, `{"keep": [1]}`, repairJSON(`{"keep": [1]}`))
}
