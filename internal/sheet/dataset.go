package sheet

import (
	"fmt"
	"strings"
	"time"
)

// Row maps a field name to its cell. Every row of a Dataset holds every field.
type Row map[string]Value

// Dataset is an ordered, uniformly shaped set of rows decoded from one sheet.
type Dataset struct {
	Fields     []string
	Rows       []Row
	FileName   string
	FileSize   int64
	Format     string
	UploadTime time.Time

	numeric    []string
	classified bool
}

// NewDataset builds a dataset from a header row and raw data rows. Header
// names are normalized, fully blank rows are dropped and short rows are
// padded with blanks. The numeric field set is computed once here.
func NewDataset(header []string, records [][]string) *Dataset {
	d := &Dataset{Fields: normalizeHeaders(header)}
	for _, rec := range records {
		if isBlankRecord(rec) {
			continue
		}
		row := make(Row, len(d.Fields))
		for i, field := range d.Fields {
			if i < len(rec) {
				row[field] = ParseCell(rec[i])
			} else {
				row[field] = Blank()
			}
		}
		d.Rows = append(d.Rows, row)
	}
	d.numeric, d.classified = NumericFields(d), true
	return d
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether the dataset has no data rows.
func (d *Dataset) Empty() bool { return d.Len() == 0 }

// Has reports whether field is part of the field name set.
func (d *Dataset) Has(field string) bool {
	if d == nil {
		return false
	}
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Numeric returns the cached numeric fields in header order.
func (d *Dataset) Numeric() []string {
	if d == nil {
		return nil
	}
	if !d.classified {
		d.numeric, d.classified = NumericFields(d), true
	}
	return append([]string(nil), d.numeric...)
}

// IsNumericField reports whether field is in the cached numeric set.
func (d *Dataset) IsNumericField(field string) bool {
	for _, f := range d.Numeric() {
		if f == field {
			return true
		}
	}
	return false
}

// Column returns the values of field in row order.
func (d *Dataset) Column(field string) []Value {
	out := make([]Value, 0, d.Len())
	for _, row := range d.Rows {
		out = append(out, row[field])
	}
	return out
}

func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
