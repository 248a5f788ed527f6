package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/roach88/updatelog/internal/engine"
)

// ReadXLSX reads one sheet of a workbook. The sheet's first row is the
// header.
func ReadXLSX(r io.Reader, opts Options) ([]engine.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("open workbook: no sheets")
		}
		sheet = sheets[0]
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("read sheet %q: empty sheet", sheet)
	}

	l, err := newLayout(cells[0], opts)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	rows := make([]engine.Row, 0, len(cells)-1)
	for _, c := range cells[1:] {
		rows = append(rows, l.row(c))
	}
	return rows, nil
}
