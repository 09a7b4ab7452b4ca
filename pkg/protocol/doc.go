// Package protocol implements the wire protocol spoken between a parley
// client and server.
//
// Each frame is one self-contained UTF-8 JSON object carried in a single
// message of a message-oriented transport (no length framing). A string
// field "type" discriminates the event; the remaining fields are the
// event's payload.
//
// Decoding is strict and fail-closed: a frame that is not valid JSON, is
// not an object, lacks a type, carries an unrecognized type, or fails any
// single field check is rejected as a whole. Nothing is partially applied.
package protocol
