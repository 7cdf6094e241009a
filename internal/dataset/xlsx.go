package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of an Excel workbook. The first row must be
// a header containing the four required columns.
func (l *Loader) readXLSX(path string) ([]rawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, &schemaError{column: l.cols.ItemName}
	}
	idx, err := l.headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]rawRecord, 0, len(rows)-1)
	for _, rec := range rows[1:] {
		out = append(out, rowAt(rec, idx))
	}
	return out, nil
}
