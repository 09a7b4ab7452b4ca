// Package server is the reference chat server: one room, WebSocket
// transport, JSON event frames.
//
// Clients connect to /ws, send a join frame, and receive welcome plus the
// recent history. Messages, edits, and deletes broadcast to every
// connected client; attachments are uploaded once and fetched on demand
// from a pluggable store (memory by default, S3 optional).
//
// The server is strict about protocol violations: an undecodable frame,
// an unknown event type, or an out-of-order join earns an error event and
// a closed connection.
package server
