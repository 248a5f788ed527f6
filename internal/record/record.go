package record

import (
	"errors"
	"time"
)

// ErrNotFound is returned by store lookups for an id that does not exist.
var ErrNotFound = errors.New("record not found")

// Content holds the free-text fields of an update. The engine never reads them.
type Content struct {
	PeopleConnected string `json:"people_connected" yaml:"people_connected"`
	Actions         string `json:"actions" yaml:"actions"`
	NextMeeting     string `json:"next_meeting" yaml:"next_meeting"`
	Address         string `json:"address" yaml:"address"`
	ActionsTaken    string `json:"actions_taken" yaml:"actions_taken"`
	MeetingDate     string `json:"meeting_date,omitempty" yaml:"meeting_date,omitempty"`
}

// Record is one client-interaction entry.
type Record struct {
	ID     int64  `json:"id"`
	Client string `json:"client"`
	Content

	// GlobalOrder is the arrival index across all clients, unique in the store.
	GlobalOrder int64 `json:"global_order"`

	// ClientOrder is the manual per-client sequence shown as the update number.
	ClientOrder int64 `json:"client_order"`

	// ClientFirstAppearance is the GlobalOrder of the record that introduced
	// Client. Clients are grouped and sorted by it.
	ClientFirstAppearance int64 `json:"client_first_appearance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Less reports whether r sorts before o in display order:
// (client_first_appearance, global_order, id).
func (r Record) Less(o Record) bool {
	if r.ClientFirstAppearance != o.ClientFirstAppearance {
		return r.ClientFirstAppearance < o.ClientFirstAppearance
	}
	if r.GlobalOrder != o.GlobalOrder {
		return r.GlobalOrder < o.GlobalOrder
	}
	return r.ID < o.ID
}

// Filter narrows List queries. The zero value selects every record.
type Filter struct {
	// Client matches the client label exactly.
	Client string

	// ClientContains matches client labels containing the text, ignoring case.
	ClientContains string

	// IDs restricts results to the given ids. Nil means no restriction;
	// an empty non-nil slice matches nothing.
	IDs []int64
}

// ImportBatch is the audit entry written for every committed merge.
type ImportBatch struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Imported  int       `json:"imported"`
	Skipped   int       `json:"skipped"`
	CreatedAt time.Time `json:"created_at"`
}
