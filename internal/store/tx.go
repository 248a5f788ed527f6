package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/updatelog/internal/record"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx implements record.Tx over a SQLite transaction.
type Tx struct {
	q querier
}

var _ record.Tx = (*Tx)(nil)

// Insert persists r and sets r.ID from the autoincrement key.
func (t *Tx) Insert(ctx context.Context, r *record.Record) error {
	result, err := t.q.ExecContext(ctx, `
		INSERT INTO meetings
		(client, people_connected, actions, next_meeting, address, actions_taken, meeting_date,
		 client_order, global_order, client_first_appearance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.Client,
		r.PeopleConnected,
		r.Actions,
		r.NextMeeting,
		r.Address,
		r.ActionsTaken,
		r.MeetingDate,
		r.ClientOrder,
		r.GlobalOrder,
		r.ClientFirstAppearance,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert record: last insert id: %w", err)
	}
	r.ID = id
	return nil
}

// Update overwrites every mutable column of the record with r.ID.
// Returns record.ErrNotFound if no row matched.
func (t *Tx) Update(ctx context.Context, r record.Record) error {
	result, err := t.q.ExecContext(ctx, `
		UPDATE meetings SET
			client = ?, people_connected = ?, actions = ?, next_meeting = ?, address = ?,
			actions_taken = ?, meeting_date = ?, client_order = ?, global_order = ?,
			client_first_appearance = ?, updated_at = ?
		WHERE id = ?
	`,
		r.Client,
		r.PeopleConnected,
		r.Actions,
		r.NextMeeting,
		r.Address,
		r.ActionsTaken,
		r.MeetingDate,
		r.ClientOrder,
		r.GlobalOrder,
		r.ClientFirstAppearance,
		formatTime(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update record %d: %w", r.ID, err)
	}
	return requireRow(result, r.ID)
}

// SetClientOrder rewrites only client_order.
func (t *Tx) SetClientOrder(ctx context.Context, id, clientOrder int64) error {
	result, err := t.q.ExecContext(ctx,
		`UPDATE meetings SET client_order = ? WHERE id = ?`, clientOrder, id)
	if err != nil {
		return fmt.Errorf("set client order %d: %w", id, err)
	}
	return requireRow(result, id)
}

// Delete removes one record and reports whether it existed.
func (t *Tx) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := t.q.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record %d: rows affected: %w", id, err)
	}
	return n > 0, nil
}

// DeleteMany removes the given ids and returns how many existed.
// Unknown and repeated ids are ignored.
func (t *Tx) DeleteMany(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	params := make([]any, len(ids))
	for i, id := range ids {
		params[i] = id
	}

	result, err := t.q.ExecContext(ctx,
		`DELETE FROM meetings WHERE id IN (`+placeholders(len(ids))+`)`, params...)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete records: rows affected: %w", err)
	}
	return n, nil
}

// Get retrieves a single record by id.
// Returns record.ErrNotFound if not found.
func (t *Tx) Get(ctx context.Context, id int64) (record.Record, error) {
	row := t.q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM meetings WHERE id = ?`, id)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, fmt.Errorf("get record %d: %w", id, record.ErrNotFound)
	}
	if err != nil {
		return record.Record{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return r, nil
}

// ByClient returns the client's records ordered by client_order, id.
func (t *Tx) ByClient(ctx context.Context, client string) ([]record.Record, error) {
	query, params := compileSelect(record.Filter{Client: client}, orderClient)
	return t.queryRecords(ctx, query, params)
}

// List returns records ordered by client_first_appearance, global_order, id.
func (t *Tx) List(ctx context.Context, f record.Filter) ([]record.Record, error) {
	query, params := compileSelect(f, orderDisplay)
	return t.queryRecords(ctx, query, params)
}

// MaxGlobalOrder returns the largest global_order, or 0 for an empty store.
func (t *Tx) MaxGlobalOrder(ctx context.Context) (int64, error) {
	var max int64
	err := t.q.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(global_order), 0) FROM meetings`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max global order: %w", err)
	}
	return max, nil
}

// MaxClientOrder returns the largest client_order among client's records
// other than excludeID, or 0 if there are none.
func (t *Tx) MaxClientOrder(ctx context.Context, client string, excludeID int64) (int64, error) {
	var max int64
	err := t.q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(client_order), 0)
		FROM meetings
		WHERE client = ? AND id <> ?
	`, client, excludeID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max client order for %q: %w", client, err)
	}
	return max, nil
}

// FirstAppearance returns the client_first_appearance of client's records,
// ignoring excludeID. The lowest-id record wins if the group has diverged.
func (t *Tx) FirstAppearance(ctx context.Context, client string, excludeID int64) (int64, bool, error) {
	var value int64
	err := t.q.QueryRowContext(ctx, `
		SELECT client_first_appearance
		FROM meetings
		WHERE client = ? AND id <> ?
		ORDER BY id ASC
		LIMIT 1
	`, client, excludeID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("first appearance for %q: %w", client, err)
	}
	return value, true, nil
}

// RecordImport writes the audit entry for a merge batch.
func (t *Tx) RecordImport(ctx context.Context, b record.ImportBatch) error {
	_, err := t.q.ExecContext(ctx, `
		INSERT INTO import_batches (id, source, imported, skipped, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.Source, b.Imported, b.Skipped, formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("record import %s: %w", b.ID, err)
	}
	return nil
}

func (t *Tx) queryRecords(ctx context.Context, query string, params []any) ([]record.Record, error) {
	rows, err := t.q.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (record.Record, error) {
	var (
		r                    record.Record
		createdAt, updatedAt string
	)
	err := s.Scan(
		&r.ID,
		&r.Client,
		&r.PeopleConnected,
		&r.Actions,
		&r.NextMeeting,
		&r.Address,
		&r.ActionsTaken,
		&r.MeetingDate,
		&r.ClientOrder,
		&r.GlobalOrder,
		&r.ClientFirstAppearance,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return record.Record{}, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return record.Record{}, fmt.Errorf("record %d created_at: %w", r.ID, err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return record.Record{}, fmt.Errorf("record %d updated_at: %w", r.ID, err)
	}
	return r, nil
}

func requireRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("record %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("record %d: %w", id, record.ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeLayout, s)
}
