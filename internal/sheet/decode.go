package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXLS  = "xls"
)

// DecodeOptions bounds a decode. A zero MaxRows means unlimited.
type DecodeOptions struct {
	MaxRows int
}

// FormatOf maps a file name to a decoder format by extension.
func FormatOf(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Decode reads a whole spreadsheet file and returns the first sheet as a
// Dataset. A sheet with a header and no data rows yields an empty Dataset.
func Decode(name string, r io.Reader, opts DecodeOptions) (*Dataset, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readExcel(r)
	case FormatXLS:
		rows, err = readXLS(r)
	}
	if err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	if format != FormatCSV {
		rows = usedRange(rows)
	}

	var header []string
	var records [][]string
	if len(rows) > 0 {
		header, records = rows[0], rows[1:]
	}

	d := NewDataset(header, records)
	if opts.MaxRows > 0 && d.Len() > opts.MaxRows {
		return nil, fmt.Errorf("%w (> %d)", ErrTooManyRows, opts.MaxRows)
	}
	d.FileName = filepath.Base(name)
	d.Format = format
	d.UploadTime = time.Now()
	return d, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	// BOMOverride picks UTF-16 when a BOM says so and strips a UTF-8 BOM.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func readXLS(r io.Reader) (rows [][]string, err error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(buf)
	}

	// The BIFF reader indexes records without bounds checks.
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("corrupt workbook: %v", p)
		}
	}()

	wb, err := xls.OpenReader(rs, "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}
	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoSheets
	}
	// ReadAllCells walks the sheets in order, so a limit of the first
	// sheet's row count stops it there.
	return trimTrailingBlank(wb.ReadAllCells(int(ws.MaxRow) + 1)), nil
}

func trimTrailingBlank(rows [][]string) [][]string {
	for len(rows) > 0 && isBlankRecord(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// usedRange drops the blank rows above and the blank columns left of the
// data, so a table starting at B2 reads like one starting at A1.
func usedRange(rows [][]string) [][]string {
	for len(rows) > 0 && isBlankRecord(rows[0]) {
		rows = rows[1:]
	}
	offset := -1
	for _, row := range rows {
		if isBlankRecord(row) {
			continue
		}
		lead := 0
		for lead < len(row) && strings.TrimSpace(row[lead]) == "" {
			lead++
		}
		if offset < 0 || lead < offset {
			offset = lead
		}
	}
	if offset <= 0 {
		return rows
	}
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row[min(offset, len(row)):]
	}
	return out
}
