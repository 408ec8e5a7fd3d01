// Package dataset extracts the numeric observations of one dataset from a text,
// delimited or spreadsheet source. A dataset is one column of a file; tokens
// that are not usable measurements are skipped and recorded, never coerced.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultMinValue is the smallest value kept; smaller numbers are treated as
// noise that would distort percentages relative to the mean.
const DefaultMinValue = 0.0001

// MinValues is the smallest dataset the comparison accepts.
const MinValues = 3

// Stdin is the path that selects standard input.
const Stdin = "-"

// Options controls extraction.
type Options struct {
	// Column is the 1-based token or field index to collect.
	Column int
	// MinValue drops values below it; zero selects DefaultMinValue.
	MinValue float64
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
	// Delimiter for CSV-like files. If 0, ',' or '\t' is chosen by extension.
	Delimiter rune
	// DecimalSeparator is '.' unless set to ','.
	DecimalSeparator rune
}

// DefaultOptions returns options reading the first column.
func DefaultOptions() Options {
	return Options{Column: 1, MinValue: DefaultMinValue, DecimalSeparator: '.'}
}

// Skip records a line whose token was not collected.
type Skip struct {
	Line   int    `json:"line" yaml:"line"`
	Token  string `json:"token" yaml:"token"`
	Reason string `json:"reason" yaml:"reason"`
}

// Dataset is the ordered sequence of values collected from one column.
type Dataset struct {
	Source  string    `json:"source" yaml:"source"`
	Column  int       `json:"column" yaml:"column"`
	Values  []float64 `json:"-" yaml:"-"`
	Skipped []Skip    `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// TooFewValuesError indicates a column yielded fewer than MinValues numbers.
type TooFewValuesError struct {
	Path   string
	Column int
	Found  int
}

func (e *TooFewValuesError) Error() string {
	return fmt.Sprintf("too few data points at column %d, found %d, need at least %d in file: %s", e.Column, e.Found, MinValues, e.Path)
}

// ErrBadColumn indicates a column index below 1.
var ErrBadColumn = errors.New("column must be greater than 0")

// ReadFile selects a reader by extension and extracts the configured column.
// The path "-" reads whitespace-separated text from standard input.
func ReadFile(path string, opt Options) (*Dataset, error) {
	if path == Stdin {
		return Load(os.Stdin, Stdin, txtReader{}, opt)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not read file: %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, path, ReaderFor(path), opt)
}

// Load extracts the configured column from r using rd. name labels the source.
func Load(r io.Reader, name string, rd Reader, opt Options) (*Dataset, error) {
	if opt.Column < 1 {
		return nil, fmt.Errorf("%s: %w (got %d)", name, ErrBadColumn, opt.Column)
	}
	if opt.MinValue <= 0 {
		opt.MinValue = DefaultMinValue
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(name)
	}
	rows, err := rd.Rows(r, opt)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(name), err)
	}

	ds := &Dataset{Source: name, Column: opt.Column}
	for _, row := range rows {
		if len(row.Fields) < opt.Column {
			continue
		}
		line := row.LineOf(opt.Column - 1)
		token := strings.TrimSpace(row.Fields[opt.Column-1])
		v, ok := parseNumeric(token, opt.DecimalSeparator)
		switch {
		case !ok:
			ds.Skipped = append(ds.Skipped, Skip{Line: line, Token: token, Reason: "not a number"})
		case math.IsNaN(v) || math.IsInf(v, 0):
			ds.Skipped = append(ds.Skipped, Skip{Line: line, Token: token, Reason: "not finite"})
		case v < opt.MinValue:
			ds.Skipped = append(ds.Skipped, Skip{Line: line, Token: token, Reason: "number is too small"})
		default:
			ds.Values = append(ds.Values, v)
		}
	}
	if len(ds.Values) < MinValues {
		return ds, &TooFewValuesError{Path: name, Column: opt.Column, Found: len(ds.Values)}
	}
	return ds, nil
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseNumeric(s string, dec rune) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	if dec == ',' {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
