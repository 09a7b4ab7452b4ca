// Package attach stores uploaded attachment blobs between the upload and
// the fetches that follow it. Attachments are content referenced from
// messages by a server-issued id; they live independently of the message
// history and expire on their own schedule.
package attach

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an attachment id is unknown.
var ErrNotFound = errors.New("attach: not found")

// ErrExpired is returned when a backend can tell that an attachment
// existed but has aged out. The bundled backends cannot: expiry is
// sweep-granular, and a swept blob reads as ErrNotFound.
var ErrExpired = errors.New("attach: expired")

// ErrTooLarge is returned when a blob exceeds the store's size limit.
var ErrTooLarge = errors.New("attach: too large")

// Attachment is one stored blob.
type Attachment struct {
	// ID is the server-issued identifier clients reference in messages.
	ID string

	// Name is the advertised filename, or empty when the uploader gave
	// none.
	Name string

	// Data is the raw (decoded) file content.
	Data []byte

	// SavedAt is when the blob was stored.
	SavedAt time.Time
}

// Store is the interface for attachment storage backends. Implement this
// interface to keep blobs in S3, GCS, or other storage.
type Store interface {
	// Save stores a blob and returns its id.
	Save(ctx context.Context, name string, data []byte) (id string, err error)

	// Fetch returns the blob for id. ErrNotFound for an unknown id;
	// ErrExpired only from backends that can distinguish an aged-out
	// blob from one that never existed. Until Cleanup removes it, an
	// old blob stays fetchable.
	Fetch(ctx context.Context, id string) (*Attachment, error)

	// Cleanup removes blobs older than maxAge. Call it periodically.
	Cleanup(ctx context.Context, maxAge time.Duration) error
}
