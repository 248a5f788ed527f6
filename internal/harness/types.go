package harness

import "github.com/roach88/updatelog/internal/record"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Op      string `json:"op"`
	Ref     string `json:"ref,omitempty"`
	Outcome string `json:"outcome"`

	// Count is the number of records changed, removed or imported.
	Count int `json:"count,omitempty"`

	// RecordID is the id of the record a create or update returned.
	RecordID int64 `json:"record_id,omitempty"`
}

// RecordState is the order-field view of one record in the final store.
type RecordState struct {
	ID              int64  `json:"id"`
	Client          string `json:"client"`
	GlobalOrder     int64  `json:"global_order"`
	ClientOrder     int64  `json:"client_order"`
	FirstAppearance int64  `json:"client_first_appearance"`
}

func stateOf(r record.Record) RecordState {
	return RecordState{
		ID:              r.ID,
		Client:          r.Client,
		GlobalOrder:     r.GlobalOrder,
		ClientOrder:     r.ClientOrder,
		FirstAppearance: r.ClientFirstAppearance,
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace lists setup and flow steps in execution order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed check. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the final store in display order.
	Records []RecordState `json:"records"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Records: []RecordState{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addTrace appends a trace event with the next sequence number.
func (r *Result) addTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
