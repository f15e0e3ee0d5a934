// Package preflight provides readiness checks for the filesystem paths and
// configuration a validation run depends on.
//
// These checks run in two contexts:
//   - "sieve run" calls RunAll before loading the source and refuses to start
//     when any check fails, so a multi-hour run never dies at its first
//     checkpoint.
//   - "sieve config validate" prints every result as a status line.
package preflight
