package store

import (
	"context"
	"fmt"

	"github.com/roach88/updatelog/internal/record"
)

// ImportBatches returns the most recent merge audit entries, newest first.
// A limit of 0 or less returns every entry.
func (s *Store) ImportBatches(ctx context.Context, limit int) ([]record.ImportBatch, error) {
	query := `
		SELECT id, source, imported, skipped, created_at
		FROM import_batches
		ORDER BY created_at DESC, id DESC
	`
	var params []any
	if limit > 0 {
		query += " LIMIT ?"
		params = append(params, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query import batches: %w", err)
	}
	defer rows.Close()

	batches := []record.ImportBatch{}
	for rows.Next() {
		var (
			b         record.ImportBatch
			createdAt string
		)
		if err := rows.Scan(&b.ID, &b.Source, &b.Imported, &b.Skipped, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import batch: %w", err)
		}
		if b.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("import batch %s created_at: %w", b.ID, err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate import batches: %w", err)
	}
	return batches, nil
}
