package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for session and draft operations.
var (
	// ErrAlreadyConnected is returned by Connect when a transport is open
	// or opening. There is at most one connection per client.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrNotConnected is returned when an operation requires an open
	// session.
	ErrNotConnected = errors.New("client: not connected")

	// ErrNicknameTooLong is returned by Connect when the nickname exceeds
	// the configured limit.
	ErrNicknameTooLong = errors.New("client: nickname too long")

	// ErrTextTooLong is returned by Commit when the draft exceeds the
	// configured text limit.
	ErrTextTooLong = errors.New("client: message text too long")

	// ErrAttachmentTooLarge is returned by Attach when the file exceeds
	// the configured ceiling. The file is never read.
	ErrAttachmentTooLarge = errors.New("client: attachment too large")

	// ErrNoSuchMessage is returned by BeginEdit when (sender, id) does not
	// identify a message in the log.
	ErrNoSuchMessage = errors.New("client: no such message")

	// ErrNotEditable is returned by BeginEdit when the target message has
	// aged out of the affordance window.
	ErrNotEditable = errors.New("client: message no longer editable")
)

// SessionError wraps an error with the operation that failed.
type SessionError struct {
	Op  string
	Err error
}

// Error returns the error message.
func (e *SessionError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SessionError) Unwrap() error { return e.Err }
