package dataset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
)

const versionsTable = `#   v1.1      v1.2
#   =======   =======
 1   119.041   117.038
 2   119.670   119.733
 3   120.675   118.346

 4   118.628   117.261
 5   120.363   118.863
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestReadFile_TextColumns(t *testing.T) {
	p := writeFile(t, "data.txt", versionsTable)

	opt := dataset.DefaultOptions()
	opt.Column = 2
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{119.041, 119.670, 120.675, 118.628, 120.363}, ds.Values)
	assert.Equal(t, 2, ds.Column)

	// Both header lines are recorded; the blank line has no column 2.
	require.Len(t, ds.Skipped, 2)
	assert.Equal(t, dataset.Skip{Line: 1, Token: "v1.1", Reason: "not a number"}, ds.Skipped[0])
	assert.Equal(t, 2, ds.Skipped[1].Line)

	opt.Column = 3
	ds, err = dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{117.038, 119.733, 118.346, 117.261, 118.863}, ds.Values)
}

func TestReadFile_FiltersSmallAndNonFinite(t *testing.T) {
	p := writeFile(t, "times.txt", "real 0.30\nreal 0.00001\nreal NaN\nreal abc\nreal 0.31\nreal 0.29\nuser\n")
	opt := dataset.DefaultOptions()
	opt.Column = 2
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.30, 0.31, 0.29}, ds.Values)

	reasons := map[string]string{}
	for _, s := range ds.Skipped {
		reasons[s.Token] = s.Reason
	}
	assert.Equal(t, "number is too small", reasons["0.00001"])
	assert.Equal(t, "not finite", reasons["NaN"])
	assert.Equal(t, "not a number", reasons["abc"])
	assert.NotContains(t, reasons, "user", "short lines are ignored, not recorded")
}

func TestReadFile_TooFewValues(t *testing.T) {
	p := writeFile(t, "short.txt", "1.0\n2.0\n")
	_, err := dataset.ReadFile(p, dataset.DefaultOptions())
	var tf *dataset.TooFewValuesError
	require.ErrorAs(t, err, &tf)
	assert.Equal(t, 2, tf.Found)
	assert.Equal(t, 1, tf.Column)
	assert.Contains(t, err.Error(), "need at least 3")
}

func TestReadFile_Errors(t *testing.T) {
	_, err := dataset.ReadFile(filepath.Join(t.TempDir(), "missing.txt"), dataset.DefaultOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read file")

	opt := dataset.DefaultOptions()
	opt.Column = 0
	_, err = dataset.Load(strings.NewReader("1\n2\n3\n"), "inline", dataset.ReaderFor("x.txt"), opt)
	require.ErrorIs(t, err, dataset.ErrBadColumn)
}

func TestReadFile_CSV(t *testing.T) {
	p := writeFile(t, "runs.csv", "run,v1,v2\n1,10.5,11.0\n2,10.7,11.2\n3,10.4,10.9\n4,10.6,\n")
	opt := dataset.DefaultOptions()
	opt.Column = 3
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{11.0, 11.2, 10.9}, ds.Values)
}

func TestReadFile_CSVSkipLinesFollowTheFile(t *testing.T) {
	body := "name,t\n" +
		"\"multi\n" +
		"line\",abc\n" +
		"\n" +
		"x,1.0\n" +
		"y,oops\n" +
		"z,3.0\n" +
		"w,4.0\n"
	p := writeFile(t, "quoted.csv", body)
	opt := dataset.DefaultOptions()
	opt.Column = 2
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 3.0, 4.0}, ds.Values)
	assert.Equal(t, []dataset.Skip{
		{Line: 1, Token: "t", Reason: "not a number"},
		{Line: 3, Token: "abc", Reason: "not a number"},
		{Line: 6, Token: "oops", Reason: "not a number"},
	}, ds.Skipped)
}

func TestReadFile_TSVAndDecimalComma(t *testing.T) {
	p := writeFile(t, "runs.tsv", "v1\tv2\n1,5\t2,5\n1,6\t2,6\n1.001,7\t2,7\n")
	opt := dataset.DefaultOptions()
	opt.DecimalSeparator = ','
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1.6, 1001.7}, ds.Values)
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("timings")
	require.NoError(t, err)
	rows := [][]any{{"v1", "v2"}, {120.1, 118.2}, {119.8, 118.0}, {120.4, 117.9}, {"n/a", 118.1}}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("timings", cell, &row))
	}
	p := filepath.Join(t.TempDir(), "bench.xlsx")
	require.NoError(t, f.SaveAs(p))

	opt := dataset.DefaultOptions()
	opt.Sheet = "timings"
	ds, err := dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{120.1, 119.8, 120.4}, ds.Values)
	assert.Len(t, ds.Skipped, 2)

	opt.Column = 2
	ds, err = dataset.ReadFile(p, opt)
	require.NoError(t, err)
	assert.Equal(t, []float64{118.2, 118.0, 117.9, 118.1}, ds.Values)

	opt.Sheet = "missing"
	_, err = dataset.ReadFile(p, opt)
	assert.Error(t, err)
}

func TestReaderFor(t *testing.T) {
	assert.True(t, dataset.ReaderFor("A.CSV").CanRead("A.CSV"))
	assert.True(t, dataset.ReaderFor("book.xlsx").CanRead("book.xlsx"))
	assert.False(t, dataset.ReaderFor("book.xlsx").CanRead("times.txt"))
	assert.True(t, dataset.ReaderFor("times.log").CanRead("times.log"))
}
