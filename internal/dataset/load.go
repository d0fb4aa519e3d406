package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrDataNotFound indicates the dataset file is absent at the expected path.
	ErrDataNotFound = errors.New("dataset not found")
	// ErrSchema indicates the header lacks a required column.
	ErrSchema = errors.New("dataset schema mismatch")
	// ErrEmpty indicates a file with a header but no data rows.
	ErrEmpty = errors.New("dataset has no rows")
)

// SchemaError names the required column missing from the header.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing column %q", e.Column)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// RowError reports a cell that could not be parsed as an integer.
type RowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: column %q: invalid integer %q", e.Line, e.Column, e.Value)
}

func (e *RowError) Unwrap() error { return e.Err }

// renames maps raw header names to table column names.
var renames = map[string]string{
	"Annual Income (k$)":     ColAnnualIncome,
	"Spending Score (1-100)": ColSpendingScore,
}

// RenameColumn returns the table name for a raw header name. Names that are
// already renamed pass through unchanged.
func RenameColumn(raw string) string {
	name := strings.TrimSpace(raw)
	if to, ok := renames[name]; ok {
		return to
	}
	return name
}

// Load reads the dataset at path.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrDataNotFound, path)
		}
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	t, err := Parse(bytes.NewReader(b), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Parse reads a header row followed by data rows. The first column is the row
// identifier whatever its name; the others are located by (renamed) name.
func Parse(r io.Reader, source string) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = sniffDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", ErrSchema)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i := 1; i < len(header); i++ {
		idx[RenameColumn(header[i])] = i
	}
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			return nil, &SchemaError{Column: c}
		}
	}

	t := &Table{Source: source}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Records)+1, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := cr.FieldPos(0)
		row, err := parseRow(rec, header, idx, line)
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, row)
	}
	return t, nil
}

func parseRow(rec, header []string, idx map[string]int, line int) (Record, error) {
	cell := func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	atoi := func(i int, column string) (int, error) {
		v := cell(i)
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, &RowError{Line: line, Column: column, Value: v, Err: err}
		}
		return n, nil
	}

	var r Record
	var err error
	if r.ID, err = atoi(0, strings.TrimSpace(header[0])); err != nil {
		return r, err
	}
	if r.Age, err = atoi(idx[ColAge], ColAge); err != nil {
		return r, err
	}
	if r.AnnualIncome, err = atoi(idx[ColAnnualIncome], ColAnnualIncome); err != nil {
		return r, err
	}
	if r.SpendingScore, err = atoi(idx[ColSpendingScore], ColSpendingScore); err != nil {
		return r, err
	}
	r.Gender = ParseGender(cell(idx[ColGender]))
	return r, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the header line.
func sniffDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
