// Package importer turns spreadsheet and YAML batch files into ordered
// engine.Row slices for Merge.
//
// Row order is file order. Blank rows inside the data are kept so that a
// row's merge position matches its line in the source; Merge skips them.
package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/roach88/updatelog/internal/engine"
)

// ErrUnsupportedFormat is returned for file extensions with no reader.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// Column headers understood by the tabular readers. Matching ignores case and
// surrounding whitespace. Unknown columns are ignored.
const (
	ColumnClient          = "Client"
	ColumnPeopleConnected = "People Connected"
	ColumnActions         = "Actions"
	ColumnNextMeeting     = "Next Meeting"
	ColumnAddress         = "Address"
	ColumnActionsTaken    = "Actions Taken"
	ColumnMeetingDate     = "Meeting Date"
)

// Options configures the tabular readers.
type Options struct {
	// Sheet names the XLSX sheet to read. Empty means the first sheet.
	Sheet string

	// ClientColumn overrides the client header. Default: "Client".
	ClientColumn string
}

func (o Options) clientColumn() string {
	if o.ClientColumn == "" {
		return ColumnClient
	}
	return o.ClientColumn
}

// Read picks a reader from name's extension (.csv, .xlsx, .yaml, .yml).
func Read(name string, r io.Reader, opts Options) ([]engine.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return ReadCSV(r, opts)
	case ".xlsx":
		return ReadXLSX(r, opts)
	case ".yaml", ".yml":
		return ReadYAML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// field identifies the Row field a column feeds.
type field int

const (
	fieldClient field = iota
	fieldPeopleConnected
	fieldActions
	fieldNextMeeting
	fieldAddress
	fieldActionsTaken
	fieldMeetingDate
)

func (f field) set(r *engine.Row, v string) {
	switch f {
	case fieldClient:
		r.Client = v
	case fieldPeopleConnected:
		r.PeopleConnected = v
	case fieldActions:
		r.Actions = v
	case fieldNextMeeting:
		r.NextMeeting = v
	case fieldAddress:
		r.Address = v
	case fieldActionsTaken:
		r.ActionsTaken = v
	case fieldMeetingDate:
		r.MeetingDate = v
	}
}

// layout maps column positions to row fields.
type layout map[int]field

// newLayout resolves a header row. The client column is required; when a
// header repeats, the leftmost column wins.
func newLayout(header []string, opts Options) (layout, error) {
	fields := map[string]field{
		key(opts.clientColumn()):   fieldClient,
		key(ColumnPeopleConnected): fieldPeopleConnected,
		key(ColumnActions):         fieldActions,
		key(ColumnNextMeeting):     fieldNextMeeting,
		key(ColumnAddress):         fieldAddress,
		key(ColumnActionsTaken):    fieldActionsTaken,
		key(ColumnMeetingDate):     fieldMeetingDate,
	}

	l := make(layout)
	bound := make(map[field]bool)
	for i, h := range header {
		f, ok := fields[key(h)]
		if !ok || bound[f] {
			continue
		}
		l[i] = f
		bound[f] = true
	}

	if !bound[fieldClient] {
		return nil, fmt.Errorf("missing %q column in header", opts.clientColumn())
	}
	return l, nil
}

// row builds one engine.Row from cells. Missing trailing cells are empty.
func (l layout) row(cells []string) engine.Row {
	var r engine.Row
	for i, f := range l {
		if i < len(cells) {
			f.set(&r, strings.TrimSpace(cells[i]))
		}
	}
	return r
}

func key(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}
