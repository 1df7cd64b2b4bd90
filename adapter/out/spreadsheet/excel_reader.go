// Package spreadsheet implements the spreadsheet input-format reader
// over xlsx blobs downloaded from the object store.
package spreadsheet

import (
	"bytes"

	"github.com/qax-os/excelize/v2"
)

// ExcelReader reads the first worksheet of an xlsx blob into string
// rows with the header row already removed; a sheet holding only a
// header (or nothing) yields no rows.
type ExcelReader struct{}

func NewExcelReader() *ExcelReader {
	return &ExcelReader{}
}

func (r *ExcelReader) ReadRows(blob []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}
