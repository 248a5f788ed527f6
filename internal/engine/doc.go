// Package engine maintains the three order fields of every update record.
//
// ORDER FIELDS:
//
//   - global_order: true arrival index across all clients. Assigned once by
//     Create or Merge as the store maximum plus one; never rewritten by
//     Reorder or Renumber.
//   - client_first_appearance: the global_order of the record that first
//     introduced a client. Copied to every later record of that client, and
//     not recomputed when earlier records are deleted. Display groups are
//     sorted by it.
//   - client_order: the per-client "update number". Users rearrange it with
//     Reorder; it never decides grouping.
//
// TRANSACTIONS:
//
// Every operation reads the current maxima and group membership and writes
// its results inside a single record.Store transaction. No counter lives in
// the Engine between calls, so concurrent operations on the same client
// cannot compute the same client_order.
//
// DRIFT:
//
// Delete, BulkDelete and a renaming Update leave gaps in the affected
// client's client_order sequence. Nothing repairs them automatically; an
// explicit Renumber pass closes them. Reorder also leaves its group gap-free
// as a side effect.
package engine
