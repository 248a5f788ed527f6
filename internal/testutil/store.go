package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/updatelog/internal/record"
	"github.com/roach88/updatelog/internal/store"
)

// NewStore opens a fresh SQLite store in a test temp directory and closes it
// when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// Snapshot is the order-field view of one record, for compact assertions.
type Snapshot struct {
	Client          string `yaml:"client"`
	GlobalOrder     int64  `yaml:"global_order"`
	ClientOrder     int64  `yaml:"client_order"`
	FirstAppearance int64  `yaml:"client_first_appearance"`
}

// Snapshots reads every record in display order and returns its order fields.
func Snapshots(t testing.TB, s *store.Store) []Snapshot {
	t.Helper()
	records, err := s.List(context.Background(), record.Filter{})
	require.NoError(t, err)

	out := make([]Snapshot, len(records))
	for i, r := range records {
		out[i] = Snapshot{
			Client:          r.Client,
			GlobalOrder:     r.GlobalOrder,
			ClientOrder:     r.ClientOrder,
			FirstAppearance: r.ClientFirstAppearance,
		}
	}
	return out
}

// ClientOrders returns client -> client_order values in display order.
func ClientOrders(t testing.TB, s *store.Store) map[string][]int64 {
	t.Helper()
	out := make(map[string][]int64)
	for _, snap := range Snapshots(t, s) {
		out[snap.Client] = append(out[snap.Client], snap.ClientOrder)
	}
	return out
}
