package engine

import (
	"context"
	"strings"

	"github.com/roach88/updatelog/internal/record"
)

// DefaultSkipLabels are client labels spreadsheet exports write for an empty
// cell. Merge treats them like an empty label.
var DefaultSkipLabels = []string{"nan"}

// Row is one input row of a merge batch.
type Row struct {
	Client         string `json:"client" yaml:"client"`
	record.Content `yaml:",inline"`
}

// MergeOptions configures one Merge call.
type MergeOptions struct {
	// Source names the batch origin (file name, upload name) for the audit log.
	Source string
}

// RowError explains why a row was skipped.
type RowError struct {
	// Position is the 1-based position of the row in the batch.
	Position int    `json:"position"`
	Label    string `json:"label"`
	Reason   string `json:"reason"`
}

// MergeResult summarizes a committed merge.
type MergeResult struct {
	BatchID  string          `json:"batch_id"`
	Imported int             `json:"imported"`
	Skipped  int             `json:"skipped"`
	Skips    []RowError      `json:"skips,omitempty"`
	Records  []record.Record `json:"records,omitempty"`
}

// Merge folds an ordered batch of rows into the store as one transaction.
//
// The row at 1-based position p gets global_order = base + p, where base is
// the store's maximum global_order when the batch starts. Skipped rows still
// consume their position, so numbering follows the source's row numbers.
//
// This differs from the spreadsheet importer updatelog replaces, which set
// global_order = p and so reused numbers on every import after the first.
// Into an empty store the two agree.
//
// A client seen for the first time in the batch keeps the
// client_first_appearance of its existing records, or takes the global_order
// of its first row in the batch when the store has none. Its client_order
// continues from the store's maximum for that client.
//
// Rows with an empty, invalid or placeholder client label are skipped and
// reported in the result. Any store failure aborts the whole batch.
func (e *Engine) Merge(ctx context.Context, rows []Row, opts MergeOptions) (MergeResult, error) {
	result := MergeResult{BatchID: e.batchIDs.Generate()}

	err := e.store.InTx(ctx, func(tx record.Tx) error {
		base, err := tx.MaxGlobalOrder(ctx)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		batch := newBatchState(tx)

		for i, row := range rows {
			pos := i + 1

			client, reason := e.parseLabel(row.Client)
			if reason != "" {
				result.Skipped++
				result.Skips = append(result.Skips, RowError{Position: pos, Label: row.Client, Reason: reason})
				continue
			}

			global := base + int64(pos)
			c, err := batch.client(ctx, client, global)
			if err != nil {
				return err
			}

			r := record.Record{
				Client:                client,
				Content:               row.Content,
				GlobalOrder:           global,
				ClientOrder:           c.next(),
				ClientFirstAppearance: c.firstAppearance,
				CreatedAt:             now,
				UpdatedAt:             now,
			}
			if err := tx.Insert(ctx, &r); err != nil {
				return err
			}
			result.Imported++
			result.Records = append(result.Records, r)
		}

		return tx.RecordImport(ctx, record.ImportBatch{
			ID:        result.BatchID,
			Source:    opts.Source,
			Imported:  result.Imported,
			Skipped:   result.Skipped,
			CreatedAt: now,
		})
	})
	if err != nil {
		return MergeResult{}, asEngineError("merge", err)
	}

	e.logger.Info("batch merged",
		"batch_id", result.BatchID,
		"source", opts.Source,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

// parseLabel normalizes a row's client label. reason is non-empty when the
// row must be skipped.
func (e *Engine) parseLabel(label string) (client, reason string) {
	client, ok := record.NormalizeClient(label)
	if !ok {
		return "", "client label is not valid UTF-8"
	}
	if client == "" {
		return "", "client label is empty"
	}
	for _, skip := range e.skipLabels {
		if strings.EqualFold(client, skip) {
			return "", "client label is a placeholder"
		}
	}
	return client, ""
}
