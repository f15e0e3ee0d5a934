// Package services defines shared utilities consumed by the validation engine,
// its collaborators, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, source paths, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so load, schema,
//     transport, and checkpoint failures can be classified with errors.Is.
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the tool.
package services
