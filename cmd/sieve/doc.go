// Command sieve runs resumable, concurrent validation passes over tabular
// candidate lists.
//
// Typical usage:
//
//	sieve config init
//	sieve run ~/lists/contacts.csv --workers 50 --autosave 5000
//	sieve run ~/lists/contacts.csv --resume
//	sieve status ~/lists/contacts.csv
//	sieve history
//
// Progress is checkpointed next to the source as <name>_backup<ext> and the
// final classification is written to <name>_result<ext>. Interrupting a run
// with Ctrl-C saves a checkpoint before exiting.
package main
