// Package client implements the parley session synchronization engine: the
// connection lifecycle, inbound event dispatch, the local message log and
// its reconciliation rules, and the single-slot edit and attachment state
// machines.
//
// The engine is deliberately strict. Every inbound frame is validated
// before any of it is applied, and any protocol violation (malformed
// frame, unknown event type, a single bad field) tears the session down.
// Recovery is always a fresh Connect.
//
// Rendering, file access, and download handling live outside the engine
// behind the Renderer, FileSource, and Downloader interfaces.
package client
