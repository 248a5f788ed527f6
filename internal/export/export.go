// Package export renders grouped records as downloadable spreadsheets.
//
// Renderers receive groups in display order (engine.Groups) and write one
// line per record with its client_order as the "Update #" column.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/updatelog/internal/engine"
)

// ErrUnknownFormat is returned by ForFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// Header is the column layout of every tabular export.
var Header = []string{
	"Client",
	"Update #",
	"People Connected",
	"Actions",
	"Next Meeting",
	"Address",
	"Actions Taken",
}

// Renderer writes groups in one output format.
type Renderer interface {
	Render(w io.Writer, groups []engine.Group) error
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer for "csv" or "xlsx". sheet names the XLSX
// worksheet; it is ignored for CSV.
func ForFormat(format, sheet string) (Renderer, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "csv":
		return CSV{}, nil
	case "xlsx", "excel":
		return XLSX{Sheet: sheet}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Filename is the attachment name for a renderer's output.
func Filename(r Renderer) string {
	return "meetings_export" + r.Extension()
}

// Lines flattens groups into data lines matching Header.
func Lines(groups []engine.Group) [][]string {
	var lines [][]string
	for _, g := range groups {
		for _, r := range g.Records {
			lines = append(lines, []string{
				r.Client,
				strconv.FormatInt(r.ClientOrder, 10),
				r.PeopleConnected,
				r.Actions,
				r.NextMeeting,
				r.Address,
				r.ActionsTaken,
			})
		}
	}
	return lines
}
