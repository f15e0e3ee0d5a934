// Package history keeps a SQLite ledger with one row per validation run.
//
// Rows are written when a run starts and updated when it ends, so an
// interrupted or crashed run still leaves a trace. The ledger never holds
// per-record state; checkpoints remain the only source of truth for resume.
package history
