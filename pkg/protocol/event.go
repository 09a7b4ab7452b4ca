package protocol

// EventType identifies the type of an event frame.
type EventType string

// Client → server event types.
const (
	EventJoin            EventType = "join"
	EventSendMessage     EventType = "message"
	EventEditMessage     EventType = "edit-message"
	EventDeleteMessage   EventType = "delete-message"
	EventFetchAttachment EventType = "fetch-attachment"
	EventAddAttachment   EventType = "add-attachment"
)

// Server → client event types.
const (
	EventWelcome           EventType = "welcome"
	EventBye               EventType = "bye"
	EventError             EventType = "error"
	EventMessage           EventType = "message"
	EventMessages          EventType = "messages"
	EventMessageUpdated    EventType = "message-updated"
	EventMessageDeleted    EventType = "message-deleted"
	EventAttachmentAdded   EventType = "attachment-added"
	EventAttachmentFetched EventType = "attachment-fetched"
)

// KnownInbound reports whether t is a recognized server → client event
// type. Anything else must be rejected; there is no forward-compatible
// "ignore unknown event" path.
func KnownInbound(t EventType) bool {
	switch t {
	case EventWelcome, EventBye, EventError, EventMessage, EventMessages,
		EventMessageUpdated, EventMessageDeleted, EventAttachmentAdded,
		EventAttachmentFetched:
		return true
	}
	return false
}

// Join is sent once the transport opens, declaring the nickname.
type Join struct {
	Nickname string `json:"nickname"`
}

// SendMessage posts a new message. Attachment is a server-issued
// attachment id, or nil when nothing is attached.
type SendMessage struct {
	Text       string  `json:"text"`
	Attachment *string `json:"attachment"`
}

// EditMessage replaces the text/attachment of a previously sent message.
type EditMessage struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	Attachment *string `json:"attachment"`
}

// DeleteMessage removes a previously sent message.
type DeleteMessage struct {
	ID int64 `json:"id"`
}

// FetchAttachment requests the content of an attachment by id.
type FetchAttachment struct {
	ID string `json:"id"`
}

// AddAttachment uploads an attachment for inclusion in a later message.
// Data is the encoded file content.
type AddAttachment struct {
	Name *string `json:"name,omitempty"`
	Data string  `json:"data"`
}

// ServerError carries a server-reported failure. Receiving one is
// terminal for the session.
type ServerError struct {
	Message string `json:"message"`
}

// Message is a single conversation entry as delivered by the server.
//
// Sender is nil for system/meta messages; such messages also carry no ID
// and are never editable or deletable. Timestamp is an RFC 3339 string on
// the wire.
type Message struct {
	Sender     *string `json:"sender,omitempty"`
	ID         *int64  `json:"id,omitempty"`
	Text       string  `json:"text"`
	Attachment *string `json:"attachment,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// Messages is a batched history delivery. Prepend directs the client to
// insert the entries before the existing log (older history) instead of
// after it.
type Messages struct {
	Messages []Message `json:"messages"`
	Prepend  bool      `json:"prepend,omitempty"`
}

// MessageUpdated is a Message whose sender and id are mandatory; it
// replaces the text/attachment/timestamp of the identified entry.
type MessageUpdated struct {
	Sender     string  `json:"sender"`
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	Attachment *string `json:"attachment,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

// MessageDeleted removes the entry identified by (sender, id).
type MessageDeleted struct {
	Sender string `json:"sender"`
	ID     int64  `json:"id"`
}

// AttachmentAdded acknowledges an upload; ID becomes the client's single
// pending attachment reference.
type AttachmentAdded struct {
	ID string `json:"id"`
}

// AttachmentFetched delivers attachment content. A nil Data means the
// attachment has expired on the server.
type AttachmentFetched struct {
	Name *string `json:"name,omitempty"`
	Data *string `json:"data,omitempty"`
}

// Event is a decoded server → client frame. Type is always a recognized
// inbound type and exactly one payload field matching it is non-nil
// (EventWelcome and EventBye carry no payload).
type Event struct {
	Type EventType

	Error             *ServerError
	Message           *Message
	Messages          *Messages
	MessageUpdated    *MessageUpdated
	MessageDeleted    *MessageDeleted
	AttachmentAdded   *AttachmentAdded
	AttachmentFetched *AttachmentFetched
}
