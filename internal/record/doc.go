// Package record defines the client-interaction record and the transactional
// store contract the ordering engine runs against.
//
// This package contains type definitions only. All other internal packages
// import record; record imports nothing internal.
//
// Key design constraints:
//   - global_order is assigned once and never rewritten by reorder or renumber
//   - client_first_appearance is shared by every record of a client
//   - client_order is presentation only and never decides grouping
//   - All JSON tags use snake_case
package record
