package client

// Position is the insertion side for a rendered message.
type Position int

const (
	// PositionAppend places the message at the newest end.
	PositionAppend Position = iota

	// PositionPrepend places the message before the existing entries, as
	// history backfill. Directives for one batch arrive newest-first, so
	// inserting each at the top reconstructs the batch order.
	PositionPrepend
)

// NoticeKind classifies out-of-band notices surfaced to the user.
type NoticeKind int

const (
	// NoticeError is a terminal protocol, transport, or server error.
	NoticeError NoticeKind = iota

	// NoticeKicked is a server-initiated disconnect (bye).
	NoticeKicked

	// NoticeAttachmentExpired reports an attachment that is no longer
	// available on the server.
	NoticeAttachmentExpired
)

// String returns the string representation of the notice kind.
func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeKicked:
		return "kicked"
	case NoticeAttachmentExpired:
		return "attachment-expired"
	default:
		return "unknown"
	}
}

// Renderer receives display directives from the engine. Implementations
// must not call back into the Client from within these methods; UI
// intents (edit, delete, download) are separate user-driven calls.
type Renderer interface {
	// Render displays a message at the given insertion side.
	Render(m *Message, pos Position)

	// Update refreshes a message already displayed: new text, edited
	// marker, or a stripped affordance.
	Update(m *Message)

	// Remove withdraws the message identified by (sender, id).
	Remove(sender string, id int64)

	// Notice surfaces an out-of-band notice.
	Notice(kind NoticeKind, text string)

	// AttachmentChanged reports a transition of the pending attachment
	// slot so attach/unattach affordances can follow it.
	AttachmentChanged(ch AttachmentChange)

	// SessionOpened reveals the conversation view after the server's
	// welcome.
	SessionOpened()

	// Reset clears the display after teardown.
	Reset()
}

// FileSource exposes one user-chosen file. The engine checks Size against
// the configured ceiling before calling Read.
type FileSource interface {
	Name() string
	Size() int64
	Read() ([]byte, error)
}

// Downloader receives fetched attachment content.
type Downloader interface {
	SaveAttachment(name string, data []byte) error
}
