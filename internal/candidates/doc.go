// Package candidates holds the ordered set of identifiers a run probes.
//
// A Store is created once per process, either from the raw candidate source
// (every record UNKNOWN) or from a checkpoint snapshot (statuses restored).
// Each Record keeps the ordinal it received at load time; that index is the
// only key shared between a checkpoint and the run that resumes it.
//
// Status transitions are monotone. Resolve moves an UNKNOWN record to a
// terminal status exactly once and rejects every later write, so a scheduling
// bug surfaces as ErrAlreadyResolved instead of a silently reclassified row.
// All mutation and snapshotting is serialized by the Store's lock.
package candidates
