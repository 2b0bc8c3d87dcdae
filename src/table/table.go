// Package table reads and writes the headered, tab-separated tables used for count matrices and metadata.
package table

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Table is a headered TSV held in memory
type Table struct {
	Header []string
	Rows   [][]string
}

// newReader returns a csv reader configured for tab-separated text, row widths are checked by Read
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// Read is a function to read a headered TSV. Short rows are padded with empty (missing) cells,
// rows wider than the header are an error.
func Read(r io.Reader) (*Table, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no columns to parse from file")
	}
	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		switch {
		case len(row) > len(header):
			return nil, fmt.Errorf("could not parse table: row %d has %d fields, header has %d", i+1, len(row), len(header))
		case len(row) < len(header):
			padded := make([]string, len(header))
			copy(padded, row)
			rows[i] = padded
		}
	}
	return &Table{Header: header, Rows: rows}, nil
}

// ReadFile is a function to read a headered TSV from disk
func ReadFile(path string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(bufio.NewReader(fh))
}

// Column returns the index of the column whose name matches exactly, or -1
func (tab *Table) Column(name string) int {
	for i, col := range tab.Header {
		if col == name {
			return i
		}
	}
	return -1
}

// MissingColumns returns the required columns absent from the header, in the order they were requested
func (tab *Table) MissingColumns(required ...string) []string {
	missing := []string{}
	for _, col := range required {
		if tab.Column(col) == -1 {
			missing = append(missing, col)
		}
	}
	return missing
}

// Floats parses a column as float64 values. Empty cells are missing values and come back as NaN.
func (tab *Table) Floats(name string) ([]float64, error) {
	col := tab.Column(name)
	if col == -1 {
		return nil, fmt.Errorf("no such column: %v", name)
	}
	values := make([]float64, len(tab.Rows))
	for i, row := range tab.Rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("non-numeric value %q in column %v (row %d)", row[col], name, i+1)
		}
		values[i] = v
	}
	return values, nil
}

// Unique returns the distinct values of a column in first-seen order
func (tab *Table) Unique(name string) []string {
	col := tab.Column(name)
	if col == -1 {
		return nil
	}
	seen := make(map[string]struct{})
	values := []string{}
	for _, row := range tab.Rows {
		if _, ok := seen[row[col]]; ok {
			continue
		}
		seen[row[col]] = struct{}{}
		values = append(values, row[col])
	}
	return values
}

// Filter returns a new table holding the rows for which keep returns true
func (tab *Table) Filter(keep func(i int, row []string) bool) *Table {
	filtered := &Table{Header: tab.Header, Rows: [][]string{}}
	for i, row := range tab.Rows {
		if keep(i, row) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// Write is a method to write the table (header first) as TSV
func (tab *Table) Write(w io.Writer) error {
	buf := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(buf, strings.Join(tab.Header, "\t")); err != nil {
		return err
	}
	for _, row := range tab.Rows {
		if _, err := fmt.Fprintln(buf, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return buf.Flush()
}

// WriteFile is a method to write the table to disk
func (tab *Table) WriteFile(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tab.Write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
