package sheet

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a cell value.
type Kind uint8

const (
	KindBlank Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "blank"
	}
}

// Value is a single cell. The zero Value is blank.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Blank returns an empty cell.
func Blank() Value { return Value{} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// ParseCell classifies a raw decoded cell. Whitespace-only cells are blank,
// cells that parse as a finite float are numbers, everything else keeps its
// text.
func ParseCell(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Blank()
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Number(f)
	}
	return Text(raw)
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) IsBlank() bool  { return v.kind == KindBlank }
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric payload; ok is false for non-number cells.
func (v Value) Float() (f float64, ok bool) {
	return v.num, v.kind == KindNumber
}

// String formats the value the way it is shown on an axis label.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Interface returns nil, float64 or string.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Blank()
	case float64:
		*v = Number(t)
	case string:
		*v = Text(t)
	case bool:
		*v = Text(strconv.FormatBool(t))
	default:
		*v = Text(string(data))
	}
	return nil
}
