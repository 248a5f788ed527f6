package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/updatelog/internal/record"
)

// Engine implements the ordering operations over a record.Store.
//
// Thread-safety: Engine holds no mutable state between calls and is safe for
// concurrent use. Isolation comes from the store's transactions.
type Engine struct {
	store      record.Store
	clock      Clock
	batchIDs   BatchIDGenerator
	skipLabels []string
	logger     *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock sets the timestamp source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithBatchIDs sets the import batch id generator. Default: UUIDv7Generator.
func WithBatchIDs(g BatchIDGenerator) Option {
	return func(e *Engine) {
		e.batchIDs = g
	}
}

// WithSkipLabels sets the placeholder client labels Merge treats as missing.
// Matching ignores case. Default: DefaultSkipLabels.
func WithSkipLabels(labels ...string) Option {
	return func(e *Engine) {
		e.skipLabels = append([]string(nil), labels...)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over the given store.
func New(s record.Store, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		clock:      SystemClock{},
		batchIDs:   UUIDv7Generator{},
		skipLabels: DefaultSkipLabels,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Create inserts a new record for client.
//
// global_order is the store maximum plus one (1 for an empty store).
// client_order is the client's maximum plus one (1 for a new client).
// client_first_appearance is copied from the client's existing records, or
// set to the new global_order when the client is new.
func (e *Engine) Create(ctx context.Context, client string, content record.Content) (record.Record, error) {
	client, err := requireClient(client)
	if err != nil {
		return record.Record{}, err
	}

	var created record.Record
	err = e.store.InTx(ctx, func(tx record.Tx) error {
		maxGlobal, err := tx.MaxGlobalOrder(ctx)
		if err != nil {
			return err
		}
		maxClient, err := tx.MaxClientOrder(ctx, client, 0)
		if err != nil {
			return err
		}
		first, known, err := tx.FirstAppearance(ctx, client, 0)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		r := record.Record{
			Client:      client,
			Content:     content,
			GlobalOrder: maxGlobal + 1,
			ClientOrder: maxClient + 1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if known {
			r.ClientFirstAppearance = first
		} else {
			r.ClientFirstAppearance = r.GlobalOrder
		}

		if err := tx.Insert(ctx, &r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return record.Record{}, asEngineError("create", err)
	}

	e.logger.Debug("record created",
		"id", created.ID,
		"client", created.Client,
		"global_order", created.GlobalOrder,
		"client_order", created.ClientOrder,
		"client_first_appearance", created.ClientFirstAppearance)
	return created, nil
}

// Update overwrites the record's content and, when client differs from the
// stored value, moves it to that client's group.
//
// A moved record gets the new group's maximum client_order plus one and the
// new group's client_first_appearance (or its own global_order when no other
// record has that client). The group it left is not renumbered.
func (e *Engine) Update(ctx context.Context, id int64, client string, content record.Content) (record.Record, error) {
	client, err := requireClient(client)
	if err != nil {
		return record.Record{}, err
	}

	var (
		updated record.Record
		moved   bool
	)
	err = e.store.InTx(ctx, func(tx record.Tx) error {
		cur, err := tx.Get(ctx, id)
		if err != nil {
			return notFoundOr(id, err)
		}

		r := cur
		r.Content = content
		r.UpdatedAt = e.clock.Now()

		if client != cur.Client {
			moved = true
			maxClient, err := tx.MaxClientOrder(ctx, client, id)
			if err != nil {
				return err
			}
			first, known, err := tx.FirstAppearance(ctx, client, id)
			if err != nil {
				return err
			}

			r.Client = client
			r.ClientOrder = maxClient + 1
			if known {
				r.ClientFirstAppearance = first
			} else {
				r.ClientFirstAppearance = cur.GlobalOrder
			}
		}

		if err := tx.Update(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return record.Record{}, asEngineError("update", err)
	}

	e.logger.Debug("record updated",
		"id", updated.ID,
		"client", updated.Client,
		"moved", moved,
		"client_order", updated.ClientOrder,
		"client_first_appearance", updated.ClientFirstAppearance)
	return updated, nil
}

// Delete removes one record. The client's remaining client_order values are
// left as they are.
func (e *Engine) Delete(ctx context.Context, id int64) (int, error) {
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		existed, err := tx.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !existed {
			return NewNotFoundError(id)
		}
		return nil
	})
	if err != nil {
		return 0, asEngineError("delete", err)
	}

	e.logger.Debug("record deleted", "id", id)
	return 1, nil
}

// BulkDelete removes every listed record that exists and returns how many
// were removed. Unknown ids are ignored, so repeating a call is harmless.
func (e *Engine) BulkDelete(ctx context.Context, ids []int64) (int, error) {
	var removed int64
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		var err error
		removed, err = tx.DeleteMany(ctx, ids)
		return err
	})
	if err != nil {
		return 0, asEngineError("bulk delete", err)
	}

	e.logger.Debug("records deleted", "requested", len(ids), "removed", removed)
	return int(removed), nil
}

// Reorder moves the dragged record to just before the target record within
// their shared client group and rewrites the group's client_order as 1..N.
// It returns how many records changed.
//
// global_order and client_first_appearance are never touched.
func (e *Engine) Reorder(ctx context.Context, draggedID, targetID int64) (int, error) {
	var changed int
	err := e.store.InTx(ctx, func(tx record.Tx) error {
		dragged, err := tx.Get(ctx, draggedID)
		if err != nil {
			return notFoundOr(draggedID, err)
		}
		target, err := tx.Get(ctx, targetID)
		if err != nil {
			return notFoundOr(targetID, err)
		}
		if dragged.Client != target.Client {
			return NewValidationError("cannot reorder across clients (%q, %q)", dragged.Client, target.Client)
		}

		group, err := tx.ByClient(ctx, dragged.Client)
		if err != nil {
			return err
		}

		changed, err = writeSequence(ctx, tx, moveBefore(group, dragged, targetID))
		return err
	})
	if err != nil {
		return 0, asEngineError("reorder", err)
	}

	e.logger.Debug("records reordered", "dragged", draggedID, "target", targetID, "changed", changed)
	return changed, nil
}

// moveBefore removes dragged from group and reinserts it immediately before
// targetID. If targetID is not in the remaining sequence, dragged goes first.
func moveBefore(group []record.Record, dragged record.Record, targetID int64) []record.Record {
	rest := make([]record.Record, 0, len(group))
	for _, r := range group {
		if r.ID != dragged.ID {
			rest = append(rest, r)
		}
	}

	idx := 0
	for i, r := range rest {
		if r.ID == targetID {
			idx = i
			break
		}
	}

	seq := make([]record.Record, 0, len(rest)+1)
	seq = append(seq, rest[:idx]...)
	seq = append(seq, dragged)
	seq = append(seq, rest[idx:]...)
	return seq
}

// writeSequence assigns client_order = position+1 and persists only the
// records whose value changed.
func writeSequence(ctx context.Context, tx record.Tx, seq []record.Record) (int, error) {
	changed := 0
	for i, r := range seq {
		want := int64(i + 1)
		if r.ClientOrder == want {
			continue
		}
		if err := tx.SetClientOrder(ctx, r.ID, want); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// normalizeClient applies record.NormalizeClient and rejects invalid UTF-8.
func normalizeClient(label string) (string, error) {
	client, ok := record.NormalizeClient(label)
	if !ok {
		return "", NewValidationError("client label is not valid UTF-8")
	}
	return client, nil
}

// requireClient normalizes a label for Create and Update. A label that is
// empty after normalization is rejected, matching the rows Merge skips.
func requireClient(label string) (string, error) {
	client, err := normalizeClient(label)
	if err != nil {
		return "", err
	}
	if client == "" {
		return "", NewValidationError("client label is empty")
	}
	return client, nil
}

// notFoundOr maps record.ErrNotFound to a not-found engine error for id.
func notFoundOr(id int64, err error) error {
	if errors.Is(err, record.ErrNotFound) {
		return NewNotFoundError(id)
	}
	return err
}
