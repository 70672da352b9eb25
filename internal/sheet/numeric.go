package sheet

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// NumericFields returns the fields, in header order, whose value is numeric
// in every row. One non-numeric row excludes a field.
func NumericFields(d *Dataset) []string {
	if d.Len() == 0 {
		return nil
	}
	var numeric []string
	for _, field := range d.Fields {
		if isColumnNumeric(d, field) {
			numeric = append(numeric, field)
		}
	}
	return numeric
}

func isColumnNumeric(d *Dataset, field string) bool {
	for _, row := range d.Rows {
		if !IsNumeric(row[field]) {
			return false
		}
	}
	return true
}

// IsNumeric is the numeric-coercion predicate. Blank cells fail, as do
// values coercing to NaN or an infinity.
func IsNumeric(v Value) bool {
	_, ok := Coerce(v)
	return ok
}

// Coerce converts a cell to a finite float.
func Coerce(v Value) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch v.Kind() {
	case KindNumber:
		f, _ = v.Float()
	case KindText:
		s := strings.TrimSpace(v.String())
		if s == "" {
			return 0, false
		}
		f, err = cast.ToFloat64E(s)
		if err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
