package batch

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
)

const timings = `# run v1.1 v1.2 v1.3
1 119.041 117.038 119.2
2 119.670 119.733 118.7
3 120.675 118.346 119.4
4 118.628 117.261 118.9
5 120.363 118.863 119.5
6 118.076 117.545 118.6
7 120.539 119.751 119.1
8 118.880 119.042 119.3
9 120.164 116.203 118.8
10 119.134 118.049 119.0
`

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`
comparisons:
  - name: one-file
    dataset1: timings.txt
    cols: [2, 3]
  - dataset1: /abs/a.txt
    dataset2: b.csv
    cols: [2]
    confidence: 0.99
`), "/data")
	require.NoError(t, err)
	require.Len(t, m.Comparisons, 2)

	first := m.Comparisons[0]
	assert.Equal(t, filepath.Join("/data", "timings.txt"), first.Dataset1)
	assert.Equal(t, first.Dataset1, first.Dataset2)
	a, b := first.Columns()
	assert.Equal(t, 2, a)
	assert.Equal(t, 3, b)

	second := m.Comparisons[1]
	assert.Equal(t, "comparison-2", second.Name)
	assert.Equal(t, "/abs/a.txt", second.Dataset1)
	assert.Equal(t, filepath.Join("/data", "b.csv"), second.Dataset2)
	a, b = second.Columns()
	assert.Equal(t, 2, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 0.99, second.Confidence)

	a, b = Comparison{}.Columns()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestParseManifest_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":      "comparisons: []\n",
		"yaml":       "comparisons: [\n",
		"no dataset": "comparisons:\n  - name: x\n",
		"duplicate":  "comparisons:\n  - {name: x, dataset1: a}\n  - {name: x, dataset1: b}\n",
		"bad column": "comparisons:\n  - {dataset1: a, cols: [0, 2]}\n",
		"many cols":  "comparisons:\n  - {dataset1: a, cols: [1, 2, 3]}\n",
		"confidence": "comparisons:\n  - {dataset1: a, confidence: 95}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(body), "")
			assert.Error(t, err)
		})
	}
}

func TestRunner_Run(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"timings.txt": timings,
		"manifest.yaml": `comparisons:
  - name: v11-v12
    dataset1: timings.txt
    cols: [2, 3]
  - name: v11-v12-strict
    dataset1: timings.txt
    cols: [2, 3]
    confidence: 0.99
  - name: v12-v11
    dataset1: timings.txt
    cols: [3, 2]
  - name: v13-v13
    dataset1: timings.txt
    cols: [4]
`,
	})
	m, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)

	r := NewRunner(stats.DefaultOptions(), dataset.DefaultOptions(), 2, nil)
	items, err := r.Run(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, items, 4)

	want := []struct {
		name string
		kind stats.Kind
	}{
		{"v11-v12", stats.Smaller},
		{"v11-v12-strict", stats.NoDifference},
		{"v12-v11", stats.Larger},
		{"v13-v13", stats.NoDifference},
	}
	for i, w := range want {
		assert.Equal(t, w.name, items[i].Comparison.Name)
		assert.Equal(t, w.kind, items[i].Result.Outcome.Kind, w.name)
	}
	assert.Equal(t, 0.99, items[1].Result.Confidence)
	assert.Equal(t, 3, r.Reads(), "columns 2, 3 and 4 are each read once")
	assert.Same(t, items[0].A, items[1].A)
}

func TestRunner_ErrorNamesComparison(t *testing.T) {
	dir := writeDir(t, map[string]string{
		"timings.txt": timings,
		"short.txt":   "1.0\n2.0\n",
	})
	m, err := ParseManifest([]byte(`comparisons:
  - {name: good, dataset1: timings.txt, cols: [2, 3]}
  - {name: short, dataset1: timings.txt, dataset2: short.txt, cols: [2, 1]}
`), dir)
	require.NoError(t, err)

	r := NewRunner(stats.DefaultOptions(), dataset.DefaultOptions(), 1, nil)
	_, err = r.Run(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short: too few data points")
	var tf *dataset.TooFewValuesError
	assert.ErrorAs(t, err, &tf)
}

func TestRunner_InvalidOptions(t *testing.T) {
	opt := stats.DefaultOptions()
	opt.SNDThreshold = 5
	r := NewRunner(opt, dataset.DefaultOptions(), 0, nil)
	_, err := r.Run(context.Background(), &Manifest{Comparisons: []Comparison{{Name: "x", Dataset1: "a"}}})
	var pe *stats.ParameterError
	assert.ErrorAs(t, err, &pe)
}

func TestRunner_Cancelled(t *testing.T) {
	dir := writeDir(t, map[string]string{"timings.txt": timings})
	m, err := ParseManifest([]byte("comparisons:\n  - {dataset1: timings.txt, cols: [2, 3]}\n"), dir)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewRunner(stats.DefaultOptions(), dataset.DefaultOptions(), 1, nil).Run(ctx, m)
	assert.ErrorIs(t, err, context.Canceled)
}
