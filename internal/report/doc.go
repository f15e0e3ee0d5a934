// Package report renders what an operator sees during and after a run: the
// section banners, the live progress line, the final summary, and the
// tables used by the status and history commands.
//
// The live line is redrawn in place with a carriage return only when the
// output is a terminal. Otherwise progress is emitted as sampled log lines so
// redirected output stays readable.
package report
