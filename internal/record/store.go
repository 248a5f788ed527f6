package record

import "context"

// Store is the transactional record store.
//
// InTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise; no partial writes are visible.
// Reads issued through the Tx observe the transaction's own writes.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}

// Tx is the set of reads and writes available inside a transaction.
type Tx interface {
	// Insert persists r and sets r.ID.
	Insert(ctx context.Context, r *Record) error

	// Update overwrites every mutable column of the record with r.ID.
	Update(ctx context.Context, r Record) error

	// SetClientOrder rewrites only client_order.
	SetClientOrder(ctx context.Context, id, clientOrder int64) error

	// Delete removes one record and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)

	// DeleteMany removes the given ids and returns how many existed.
	DeleteMany(ctx context.Context, ids []int64) (int64, error)

	// Get returns ErrNotFound when id does not exist.
	Get(ctx context.Context, id int64) (Record, error)

	// ByClient returns the client's records ordered by client_order, id.
	ByClient(ctx context.Context, client string) ([]Record, error)

	// List returns records ordered by client_first_appearance, global_order, id.
	List(ctx context.Context, f Filter) ([]Record, error)

	// MaxGlobalOrder returns 0 for an empty store.
	MaxGlobalOrder(ctx context.Context) (int64, error)

	// MaxClientOrder returns 0 when no record other than excludeID has client.
	// Pass excludeID 0 to consider every record.
	MaxClientOrder(ctx context.Context, client string, excludeID int64) (int64, error)

	// FirstAppearance returns the client_first_appearance shared by client's
	// records, ignoring excludeID. ok is false when no such record exists.
	FirstAppearance(ctx context.Context, client string, excludeID int64) (value int64, ok bool, err error)

	// RecordImport writes the audit entry for a merge batch.
	RecordImport(ctx context.Context, b ImportBatch) error
}
