package engine

import (
	"context"
	"slices"
	"sort"

	"github.com/roach88/updatelog/internal/record"
)

// Group is one client's records in display order. Records carry their
// client_order for display as the update number.
type Group struct {
	Client          string          `json:"client"`
	FirstAppearance int64           `json:"first_appearance"`
	Records         []record.Record `json:"records"`
}

// Get returns one record.
func (e *Engine) Get(ctx context.Context, id int64) (record.Record, error) {
	var r record.Record
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		var err error
		r, err = tx.Get(ctx, id)
		return notFoundOr(id, err)
	})
	if err != nil {
		return record.Record{}, asEngineError("get", err)
	}
	return r, nil
}

// List returns matching records ordered by (client_first_appearance,
// global_order).
func (e *Engine) List(ctx context.Context, f record.Filter) ([]record.Record, error) {
	var records []record.Record
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		var err error
		records, err = tx.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, asEngineError("list", err)
	}
	return records, nil
}

// Groups returns matching records grouped by client. Groups appear in the
// order their client is first met in display order; within a group records
// keep display order.
func (e *Engine) Groups(ctx context.Context, f record.Filter) ([]Group, error) {
	records, err := e.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return groupRecords(records), nil
}

// Clients returns the distinct non-empty client labels in group order.
func (e *Engine) Clients(ctx context.Context) ([]string, error) {
	groups, err := e.Groups(ctx, record.Filter{})
	if err != nil {
		return nil, err
	}

	clients := make([]string, 0, len(groups))
	for _, g := range groups {
		if g.Client != "" {
			clients = append(clients, g.Client)
		}
	}
	return clients, nil
}

// groupRecords splits records into client groups in display order. The
// input order does not matter.
func groupRecords(records []record.Record) []Group {
	sorted := slices.Clone(records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	groups := []Group{}
	index := make(map[string]int)

	for _, r := range sorted {
		i, ok := index[r.Client]
		if !ok {
			i = len(groups)
			index[r.Client] = i
			groups = append(groups, Group{Client: r.Client, FirstAppearance: r.ClientFirstAppearance})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
