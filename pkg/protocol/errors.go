package protocol

import (
	"errors"
	"fmt"
)

// Codec errors.
var (
	// ErrInvalidPayload is returned by Encode when the payload does not
	// serialize to a JSON object.
	ErrInvalidPayload = errors.New("protocol: payload is not an object")

	// ErrParse is returned by Decode when the frame is not valid JSON.
	ErrParse = errors.New("protocol: malformed frame")

	// ErrSchema is returned by Decode when the frame is valid JSON but is
	// not an object or lacks a string type field.
	ErrSchema = errors.New("protocol: frame is not a typed object")

	// ErrFrameTooLarge is returned when a frame exceeds the configured
	// maximum size.
	ErrFrameTooLarge = errors.New("protocol: frame too large")
)

// UnknownEventError is returned by Decode when the frame's type is not a
// recognized inbound event type.
type UnknownEventError struct {
	Type string
}

// Error returns the error message.
func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("protocol: unknown event type %q", e.Type)
}

// ValidationError is returned by Decode when a recognized event carries a
// field that fails its type/shape check. Field names the offending field.
type ValidationError struct {
	Event EventType
	Field string
	Want  string
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("protocol: %s: field %q must be %s", e.Event, e.Field, e.Want)
}

func badField(event EventType, field, want string) error {
	return &ValidationError{Event: event, Field: field, Want: want}
}
