package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/updatelog/internal/record"
)

// createTestStore creates a new temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testTime = time.Date(2024, 12, 6, 9, 30, 0, 0, time.UTC)

// createTestRecord creates a record with the given order fields.
func createTestRecord(client string, global, clientOrder, first int64) record.Record {
	return record.Record{
		Client:                client,
		Content:               record.Content{Actions: "follow up " + client},
		GlobalOrder:           global,
		ClientOrder:           clientOrder,
		ClientFirstAppearance: first,
		CreatedAt:             testTime,
		UpdatedAt:             testTime,
	}
}

// insertTestRecords inserts records in one transaction and returns them with ids set.
func insertTestRecords(t *testing.T, s *Store, records ...record.Record) []record.Record {
	t.Helper()
	err := s.InTx(context.Background(), func(tx record.Tx) error {
		for i := range records {
			if err := tx.Insert(context.Background(), &records[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert test records: %v", err)
	}
	return records
}
