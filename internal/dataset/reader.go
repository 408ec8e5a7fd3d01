package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one line or record of tokens. Line is the 1-based source line (or
// worksheet row) the row starts on.
type Row struct {
	Line   int
	Fields []string

	// fieldLines holds the starting line of each field when a record may
	// span lines.
	fieldLines []int
}

// LineOf returns the source line field i starts on.
func (r Row) LineOf(i int) int {
	if i >= 0 && i < len(r.fieldLines) {
		return r.fieldLines[i]
	}
	return r.Line
}

// Reader splits a source into rows of tokens, one row per line or record.
type Reader interface {
	CanRead(filename string) bool
	Rows(r io.Reader, opt Options) ([]Row, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(rd Reader) {
	registry = append(registry, rd)
}

// ReaderFor returns the first registered reader accepting filename, falling
// back to whitespace-separated text.
func ReaderFor(filename string) Reader {
	for _, rd := range registry {
		if rd.CanRead(filename) {
			return rd
		}
	}
	return txtReader{}
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// txtReader splits every line on whitespace, the layout /usr/bin/time and
// most benchmark logs produce.
type txtReader struct{}

func (txtReader) CanRead(string) bool { return true }

func (txtReader) Rows(r io.Reader, _ Options) ([]Row, error) {
	var rows []Row
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for line := 1; sc.Scan(); line++ {
		rows = append(rows, Row{Line: line, Fields: strings.Fields(sc.Text())})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

type csvReader struct{}

func (csvReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Rows keeps the file line of every field: quoted fields may hold newlines
// and blank lines are not records, so the record index is not the line.
func (csvReader) Rows(r io.Reader, opt Options) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = opt.Delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var rows []Row
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read record %d: %w", len(rows)+1, err)
		}
		lines := make([]int, len(rec))
		for i := range rec {
			lines[i], _ = cr.FieldPos(i)
		}
		row := Row{Fields: rec, fieldLines: lines}
		if len(lines) > 0 {
			row.Line = lines[0]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Rows(r io.Reader, opt Options) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	rows := make([]Row, len(cells))
	for i, c := range cells {
		rows[i] = Row{Line: i + 1, Fields: c}
	}
	return rows, nil
}
