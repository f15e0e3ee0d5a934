// Package engine runs the concurrent validation pass over a candidate Store.
//
// A fixed pool of workers probes UNKNOWN records in index order from a resume
// offset. Results flow back over a channel to the goroutine that called Run,
// which is the only writer of the Store: it resolves records, updates
// counters, reports progress, and takes periodic checkpoints. Cancelling the
// context stops dispatch, lets in-flight probes finish, and writes one last
// checkpoint before Run returns.
package engine
