package engine

import (
	"context"
	"sort"

	"github.com/roach88/updatelog/internal/record"
)

// Renumber rewrites client_order as 1, 2, 3, ... within each client, following
// display order (client_first_appearance, global_order, id). An empty client
// renumbers every client. Only records whose value changes are written, so a
// second call with no mutation in between returns 0.
//
// This is the repair pass for gaps left by Delete and renaming Update. It
// also discards manual Reorder placements, since it follows arrival order.
// Cost is one scan of the selected records; run it as maintenance, not per
// request.
func (e *Engine) Renumber(ctx context.Context, client string) (int, error) {
	if client != "" {
		var err error
		if client, err = normalizeClient(client); err != nil {
			return 0, err
		}
	}

	var changed int
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		records, err := tx.List(ctx, record.Filter{Client: client})
		if err != nil {
			return err
		}

		counters := make(map[string]int64)
		for _, r := range records {
			counters[r.Client]++
			want := counters[r.Client]
			if r.ClientOrder == want {
				continue
			}
			if err := tx.SetClientOrder(ctx, r.ID, want); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, asEngineError("renumber", err)
	}

	e.logger.Info("records renumbered", "client", client, "changed", changed)
	return changed, nil
}

// Backfill repairs stores written before order fields existed. When any
// record still has global_order 0, every record is given global_order by
// ascending id and client_first_appearance from the first record of its
// client in that order. client_order is left alone. Returns the number of
// records rewritten; 0 when nothing needed repair.
func (e *Engine) Backfill(ctx context.Context) (int, error) {
	var changed int
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		records, err := tx.List(ctx, record.Filter{})
		if err != nil {
			return err
		}

		legacy := false
		for _, r := range records {
			if r.GlobalOrder == 0 {
				legacy = true
				break
			}
		}
		if !legacy {
			return nil
		}

		sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

		firstSeen := make(map[string]int64)
		for i, r := range records {
			global := int64(i + 1)
			if _, ok := firstSeen[r.Client]; !ok {
				firstSeen[r.Client] = global
			}
			first := firstSeen[r.Client]

			if r.GlobalOrder == global && r.ClientFirstAppearance == first {
				continue
			}
			r.GlobalOrder = global
			r.ClientFirstAppearance = first
			if err := tx.Update(ctx, r); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, asEngineError("backfill", err)
	}

	e.logger.Info("order fields backfilled", "changed", changed)
	return changed, nil
}
