package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/logging"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
)

var (
	v11 = []float64{119.041, 119.670, 120.675, 118.628, 120.363, 118.076, 120.539, 118.880, 120.164, 119.134}
	v12 = []float64{117.038, 119.733, 118.346, 117.261, 118.863, 117.545, 119.751, 119.042, 116.203, 118.049}
)

func TestMessage(t *testing.T) {
	assert.Equal(t,
		"With 95.0% confidence, there is no significant difference between the datasets.",
		Message(0.95, stats.Outcome{Kind: stats.NoDifference}))
	assert.Equal(t,
		"With 95.0% confidence, dataset-2 is smaller than dataset-1 by about 1.1%.",
		Message(0.95, stats.Outcome{Kind: stats.Smaller, Percent: 1.1161}))
	assert.Equal(t,
		"With 99.9% confidence, dataset-2 is larger than dataset-1 by about 1,234.6%.",
		Message(0.999, stats.Outcome{Kind: stats.Larger, Percent: 1234.56}))
	assert.Equal(t,
		"With 90.0% confidence, dataset-2 is larger than dataset-1 by about 0.0%.",
		Message(0.9, stats.Outcome{Kind: stats.Larger, Percent: 0.04}))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func compared(t *testing.T) (*stats.Result, *dataset.Dataset, *dataset.Dataset) {
	t.Helper()
	res, err := stats.Compare(v11, v12, stats.DefaultOptions())
	require.NoError(t, err)
	a := &dataset.Dataset{Source: "times.txt", Column: 2, Values: v11, Skipped: []dataset.Skip{{Line: 1, Token: "v1.1", Reason: "not a number"}}}
	b := &dataset.Dataset{Source: "times.txt", Column: 3, Values: v12}
	return res, a, b
}

func TestNew(t *testing.T) {
	res, a, b := compared(t)
	r, err := New(res, a, b)
	require.NoError(t, err)

	_, err = uuid.Parse(r.ID)
	assert.NoError(t, err)
	assert.Equal(t, stats.Smaller, r.Outcome)
	assert.Equal(t, "With 95.0% confidence, dataset-2 is smaller than dataset-1 by about 1.1%.", r.Message)
	assert.Equal(t, "times.txt", r.Dataset1.Source)
	assert.Equal(t, 1, r.Dataset1.Skipped)
	assert.Equal(t, 3, r.Dataset2.Column)
	assert.Equal(t, 118.076, r.Dataset1.Description.Min)
	assert.Equal(t, 120.675, r.Dataset1.Description.Max)
	assert.InDelta(t, res.A.StdDev(), r.Dataset1.Description.StdDev, 1e-9)
	assert.InDelta(t, 1.3339, r.MeanDiff, 1e-4)
	assert.Equal(t, res.Solution.Z, r.Z)

	r, err = New(res, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, r.Dataset1.Source)
	assert.Equal(t, res.A, r.Dataset1.Statistics)
}

func TestRender(t *testing.T) {
	res, a, b := compared(t)
	r, err := New(res, a, b)
	require.NoError(t, err)

	out, err := r.Render(FormatText)
	require.NoError(t, err)
	assert.Equal(t, r.Message+"\n", string(out))

	out, err = r.Render(FormatJSON)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "smaller", doc["outcome"])
	assert.Equal(t, r.ID, doc["id"])
	ctx := doc["context"].(map[string]any)
	assert.InDelta(t, 16.7496, ctx["effective_dof"], 1e-3)

	out, err = r.Render(FormatYAML)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "smaller", doc["outcome"])
	assert.Contains(t, string(out), "source: times.txt")

	_, err = r.Render("xml")
	assert.Error(t, err)
}

func TestRenderAll(t *testing.T) {
	res, a, b := compared(t)
	first, err := New(res, a, b)
	require.NoError(t, err)
	first.Name = "v1.1-vs-v1.2"
	second, err := New(res, nil, nil)
	require.NoError(t, err)

	out, err := RenderAll([]*Report{first, second}, FormatText)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "v1.1-vs-v1.2: With 95.0%"))
	assert.True(t, strings.HasPrefix(lines[1], "With 95.0%"))

	out, err = RenderAll([]*Report{first, second}, FormatJSON)
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(out, &docs))
	assert.Len(t, docs, 2)
	assert.Equal(t, "v1.1-vs-v1.2", docs[0]["name"])
}

func TestLog(t *testing.T) {
	opt := stats.DefaultOptions()
	opt.Trace = true
	res, err := stats.Compare(v11, v12, opt)
	require.NoError(t, err)

	var buf bytes.Buffer
	Log(logging.New(&buf, 1), res)
	out := buf.String()
	assert.Contains(t, out, "effective degrees of freedom")
	assert.Contains(t, out, "reject the null hypothesis")
	assert.NotContains(t, out, "bisection")

	buf.Reset()
	Log(logging.New(&buf, 2), res)
	assert.Equal(t, res.Solution.Iterations, strings.Count(buf.String(), "msg=bisection"))

	buf.Reset()
	Log(logging.New(&buf, 0), res)
	assert.Empty(t, buf.String())
}

func TestLogSkipped(t *testing.T) {
	_, a, _ := compared(t)
	var buf bytes.Buffer
	LogSkipped(logging.New(&buf, 2), a)
	assert.Contains(t, buf.String(), "token=v1.1")
	assert.Contains(t, buf.String(), "line=1")
}
