// Package store provides SQLite-backed transactional storage for update records.
//
// The store holds two tables:
//   - meetings: one row per client-interaction record with its three order fields
//   - import_batches: one audit row per committed merge
//
// # Transactions
//
// Every engine operation runs through Store.InTx. Connections are opened with
// _txlock=immediate, so BEGIN takes the write lock before the first read and a
// read-max-then-write sequence cannot interleave with another writer.
//
// # Deterministic Query Results
//
// Every list query carries a total ORDER BY ending in id. Display order is
// (client_first_appearance, global_order, id); per-client order is
// (client_order, id).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
