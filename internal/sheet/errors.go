package sheet

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat indicates a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// ErrTooManyRows indicates a sheet above the configured row limit.
var ErrTooManyRows = errors.New("too many rows")

// ErrNoSheets indicates a workbook without any worksheet.
var ErrNoSheets = errors.New("no sheets")

// DecodeError wraps a failure of one of the format decoders.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
