package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/roach88/updatelog/internal/engine"
)

// CSV renders comma-separated text with a header line.
type CSV struct{}

func (CSV) ContentType() string { return "text/csv; charset=utf-8" }
func (CSV) Extension() string   { return ".csv" }

// Render writes the header and one line per record.
func (CSV) Render(w io.Writer, groups []engine.Group) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(Lines(groups)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
