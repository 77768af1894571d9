package rows

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/vvka-141/vset/pkg/vset"
)

// RequiredColumns must all be present in the header and non-blank in every
// data row.
var RequiredColumns = []string{"accession", "label", "value", "definition", "full_definition"}

// Optional columns parsed with type coercion and defaulting.
const (
	ColIdenticalTerms = "identical_terms"
	ColSimilarTerms   = "similar_terms"
	ColDeprecated     = "deprecated"
	ColDeprecatedTo   = "deprecated_to"
	ColAdditional     = "additional"
	ColPURL           = "purl"
)

// HeaderIndex maps lowercased, trimmed column names to their positions.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header record.
// The first occurrence wins when a column name repeats.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// Record is one data row with its logical 1-based row number
// (header = row 1, first data row = row 2).
type Record struct {
	Line   int
	Fields []string
}

// File is a parsed CSV source file: indexed header plus data records.
// Blank rows are dropped but keep their place in the numbering.
type File struct {
	Path    string
	header  HeaderIndex
	records []Record
}

// Read parses CSV content and validates the header.
// Returns a vset.SchemaError (row 1) when the file is empty or a required
// column is missing from the header.
func Read(path string, content []byte) (*File, error) {
	records, err := parseCSV(sanitizeUTF8(content))
	if err != nil {
		return nil, &vset.SchemaError{
			File:    path,
			Row:     1,
			Column:  RequiredColumns[0],
			Message: fmt.Sprintf("failed to parse CSV: %v", err),
		}
	}
	if len(records) == 0 {
		return nil, &vset.SchemaError{
			File:    path,
			Row:     1,
			Column:  RequiredColumns[0],
			Message: "file is empty, a header row is required",
		}
	}

	header := MakeHeaderIndex(records[0])
	for _, col := range RequiredColumns {
		if _, ok := header[col]; !ok {
			return nil, &vset.SchemaError{
				File:    path,
				Row:     1,
				Column:  col,
				Message: "missing required column",
			}
		}
	}

	f := &File{Path: path, header: header}
	for i, fields := range records[1:] {
		if isEmptyRow(fields) {
			continue
		}
		f.records = append(f.records, Record{Line: i + 2, Fields: fields})
	}
	return f, nil
}

// Records returns the data rows in file order.
func (f *File) Records() []Record {
	return f.records
}

// Value returns the trimmed cell of the given column for a record, or ""
// when the column is absent or the row is too short.
func (f *File) Value(rec Record, column string) string {
	pos, ok := f.header[column]
	if !ok || pos >= len(rec.Fields) {
		return ""
	}
	return strings.TrimSpace(rec.Fields[pos])
}

// parseCSV reads every record, tolerating ragged rows and stray quotes.
func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
