// Package oracle probes a remote HTTP endpoint for one identifier at a time.
//
// The endpoint is described by a URL template containing the {identifier}
// placeholder. A probe issues a single GET with redirects disabled and maps
// the response status to a candidate classification: the configured confirm
// status means CONFIRMED, any other status means REJECTED. Transport failures
// are returned as *TransportError so callers can record them separately.
package oracle
