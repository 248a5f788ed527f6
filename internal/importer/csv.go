package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/updatelog/internal/engine"
)

// ReadCSV reads a CSV file whose first line is the header.
func ReadCSV(r io.Reader, opts Options) ([]engine.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = trimBOM(header)

	l, err := newLayout(header, opts)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows := []engine.Row{}
	last := endLine(cr, header)
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		// encoding/csv skips empty lines; put them back as blank rows.
		line, _ := cr.FieldPos(0)
		for n := last + 1; n < line; n++ {
			rows = append(rows, engine.Row{})
		}
		rows = append(rows, l.row(cells))
		last = endLine(cr, cells)
	}
	return rows, nil
}

// endLine returns the source line the most recently read record ends on.
// Quoted fields may span lines.
func endLine(cr *csv.Reader, cells []string) int {
	i := len(cells) - 1
	line, _ := cr.FieldPos(i)
	return line + strings.Count(cells[i], "\n")
}

// trimBOM drops a UTF-8 byte order mark spreadsheet tools put before the
// first header.
func trimBOM(header []string) []string {
	if len(header) > 0 {
		if h := header[0]; len(h) >= 3 && h[:3] == "\xef\xbb\xbf" {
			header[0] = h[3:]
		}
	}
	return header
}
