// Package checkpoint persists and restores Candidate Store snapshots.
//
// Every file lives next to the source: <name>_backup<ext> holds the periodic
// snapshot, <name>_result<ext> the terminal export, and .<name>.lock guards
// the pair against a second concurrent run. Snapshots are full copies written
// through a temp file and an atomic rename, so a crash mid-write leaves the
// previous checkpoint intact. No offset is stored; the resume point is
// recomputed from per-record statuses.
package checkpoint
