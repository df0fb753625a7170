// Package input reads the delimited spreadsheet export that lists transfers.
package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data row. Number is 1-based and does not count a skipped header
// or blank lines.
type Row struct {
	Number int
	Line   int
	Fields []string
}

// Reader parses delimited text.
type Reader struct {
	Delimiter  rune
	SkipHeader bool
}

// ParseError reports malformed delimited text.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ReadFile reads every row of the file at path.
func (r Reader) ReadFile(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.ReadAll(bytes.NewReader(data))
}

// ReadAll reads every row from src. Fields are trimmed, blank lines are
// skipped and rows may have any number of fields.
func (r Reader) ReadAll(src io.Reader) ([]Row, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	cr := csv.NewReader(bytes.NewReader(data))
	if r.Delimiter != 0 {
		cr.Comma = r.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var rows []Row
	header := r.SkipHeader
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}
		if header {
			header = false
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, Row{Number: len(rows) + 1, Line: line, Fields: rec})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
