// Package harness runs YAML scenarios against the ordering engine.
//
// A scenario replays a sequence of engine operations on a fresh in-memory
// store and then checks the resulting order fields.
//
// # Scenario Format
//
//	name: rename-into-existing-client
//	description: "A renamed record joins the target group at its end"
//	setup:
//	  - op: create
//	    client: Acme
//	    as: a1
//	flow:
//	  - op: update
//	    ref: g1
//	    client: Acme
//	    expect:
//	      record: { client_order: 2, client_first_appearance: 1 }
//	  - op: delete
//	    ref: "#99"
//	    expect: { error: not_found }
//	assertions:
//	  - type: client_orders
//	    client: Acme
//	    orders: [1, 2]
//	  - type: invariants
//	    contiguous: true
//
// Records created by a step are named with "as" and referenced later with
// "ref", "refs", "dragged" and "target". A reference of the form "#<n>"
// names the raw id n, which is how scenarios address records that do not
// exist.
//
// # Operations
//
//   - create, update, delete, bulk_delete, reorder
//   - merge (rows, with "aliases" naming the imported records in order)
//   - renumber (optional client), backfill
//
// # Assertion Types
//
//   - record: order fields and client of one referenced record
//   - absent: the referenced record no longer exists
//   - client_orders: client_order values of one client in display order
//   - groups: client labels in group display order
//   - count: total number of records
//   - invariants: the ordering invariants hold (optionally contiguity too)
//
// # Deterministic Testing
//
// Every scenario runs with a stepping clock, sequential batch ids and a
// private in-memory SQLite database, so traces are identical across runs
// and can be compared against golden files.
package harness
