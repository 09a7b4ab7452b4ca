package client

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"

	"github.com/parley-chat/parley/pkg/protocol"
)

// State is the connection lifecycle state.
type State int

const (
	// StateDisconnected means no transport exists. The only state from
	// which Connect succeeds.
	StateDisconnected State = iota

	// StateConnecting means the transport is opening or opened but the
	// server has not sent welcome yet.
	StateConnecting

	// StateOpen means the server acknowledged the join with welcome.
	StateOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Client is the session synchronization engine. It owns the transport,
// the local message log, and the single-slot edit and attachment state
// machines, and is the single entry and exit point for the session.
//
// All state mutation is serialized: transport callbacks and user actions
// alike run under one lock, so handlers observe fully applied batches and
// there is no interleaving to reason about.
type Client struct {
	cfg        *Config
	logger     *slog.Logger
	metrics    *Metrics
	renderer   Renderer
	downloader Downloader
	dial       Dialer

	mu          sync.Mutex
	state       State
	transport   Transport
	address     string
	nickname    string
	draft       string
	log         *MessageLog
	edit        EditSession
	attachments AttachmentSession
}

// New constructs a Client. The renderer is required; downloader may be
// nil if attachment downloads are never requested; a nil dialer selects
// the WebSocket transport.
func New(cfg *Config, renderer Renderer, downloader Downloader, dial Dialer) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	if dial == nil {
		dial = WebSocketDialer(cfg.Limits, cfg.WriteTimeout)
	}
	return &Client{
		cfg:        cfg,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		renderer:   renderer,
		downloader: downloader,
		dial:       dial,
		log:        NewMessageLog(cfg.Limits.HistoryWindow),
	}
}

// State returns the connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Nickname returns the nickname declared on the last Connect.
func (c *Client) Nickname() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nickname
}

// Connect opens a session to address under the given nickname. It fails
// with ErrAlreadyConnected unless the client is fully disconnected. On
// success the transport is open and join has been queued; the session
// reaches StateOpen only once the server sends welcome.
func (c *Client) Connect(ctx context.Context, address, nickname string) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	if len(nickname) > c.cfg.Limits.NicknameMax {
		c.mu.Unlock()
		return ErrNicknameTooLong
	}
	c.state = StateConnecting
	c.address = address
	c.nickname = nickname
	c.metrics.setState(StateConnecting)
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	t, err := c.dial(dialCtx, address, TransportEvents{
		OnOpen:    c.onTransportOpen,
		OnMessage: c.onTransportMessage,
		OnError:   c.onTransportError,
		OnClose:   c.onTransportClose,
	})
	if err != nil {
		c.logger.Error("connect failed", "address", address, "error", err)
		c.mu.Lock()
		c.failLocked(NoticeError, "couldn't connect to the server")
		c.mu.Unlock()
		return &SessionError{Op: "connect", Err: err}
	}

	c.mu.Lock()
	if c.state != StateConnecting {
		// Closed while dialing.
		c.mu.Unlock()
		t.Close()
		return ErrNotConnected
	}
	c.transport = t
	c.mu.Unlock()

	t.Start()
	c.logger.Info("connecting", "address", address, "nickname", nickname)
	return nil
}

// Close tears the session down. Idempotent; safe from any state. The
// transport is closed, the message log cleared, and both the edit and
// attachment state machines reset, returning the client to its pre-join
// state.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// onTransportOpen sends the join event once the transport reports open.
// The session stays gated at StateConnecting until welcome arrives.
func (c *Client) onTransportOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateConnecting {
		return
	}
	c.sendLocked(protocol.EventJoin, protocol.Join{Nickname: c.nickname})
}

func (c *Client) onTransportMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.frameReceived(len(text))
	c.handleFrameLocked([]byte(text))
}

func (c *Client) onTransportError(err error) {
	c.logger.Error("transport error", "error", err)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(NoticeError, "connection error: "+err.Error())
}

func (c *Client) onTransportClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// SetDraft stages composer text. It is not sent until Commit.
func (c *Client) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Find returns the logged message identified by (sender, id), or nil.
func (c *Client) Find(sender string, id int64) *Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Find(sender, id)
}

// Draft returns the staged composer text.
func (c *Client) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Commit sends the staged draft. With an edit active it emits
// edit-message for the target id; otherwise it emits a new message.
//
// An empty trimmed draft with no pending attachment is a silent no-op:
// nothing is sent and every piece of state, including an active edit,
// stays exactly as it was. Otherwise, after emitting, the composer is
// reset and the edit session cleared; the edit backup is discarded, it
// exists only for cancellation.
func (c *Client) Commit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(c.draft)
	attachment := c.attachments.Pending()
	if text == "" && attachment == nil {
		return nil
	}
	if len(text) > c.cfg.Limits.TextMax {
		return ErrTextTooLong
	}
	if c.state != StateOpen {
		return ErrNotConnected
	}

	var err error
	if id, editing := c.edit.ActiveID(); editing {
		err = c.sendLocked(protocol.EventEditMessage, protocol.EditMessage{
			ID:         id,
			Text:       text,
			Attachment: attachment,
		})
	} else {
		err = c.sendLocked(protocol.EventSendMessage, protocol.SendMessage{
			Text:       text,
			Attachment: attachment,
		})
	}
	if err != nil {
		return err
	}

	c.edit.reset()
	c.draft = ""
	ch := c.attachments.Clear()
	c.renderer.AttachmentChanged(ch)
	return nil
}

// BeginEdit starts editing the message identified by (sender, id),
// backing up the composer and loading the target's text and attachment.
// Whether the message belongs to the local user is the caller's check;
// the engine only requires that it exists and still has its affordance.
//
// Edits do not nest: starting one while another is active first cancels
// the active edit, restoring the original backup.
func (c *Client) BeginEdit(sender string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.log.Find(sender, id)
	if m == nil {
		return ErrNoSuchMessage
	}
	if !m.Editable() {
		return ErrNotEditable
	}

	if c.edit.Active() {
		c.cancelEditLocked()
	}

	c.edit.begin(id, c.draft, c.attachments.Pending())
	c.draft = m.Text
	ch := c.attachments.Replace(m.Attachment)
	c.renderer.AttachmentChanged(ch)
	return nil
}

// CancelEdit abandons the active edit and restores the composer backup.
// Without an active edit it does nothing.
func (c *Client) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.edit.Active() {
		return
	}
	c.cancelEditLocked()
}

func (c *Client) cancelEditLocked() {
	text, attachment := c.edit.cancel()
	c.draft = text
	ch := c.attachments.Replace(attachment)
	c.renderer.AttachmentChanged(ch)
}

// Delete asks the server to delete the local user's message with the
// given id. The log entry is removed only when the server's
// message-deleted event comes back.
func (c *Client) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return ErrNotConnected
	}
	return c.sendLocked(protocol.EventDeleteMessage, protocol.DeleteMessage{ID: id})
}

// Attach uploads a file for inclusion in the next sent or edited
// message. The size is checked against the configured ceiling before the
// file is read; oversized files are rejected without a read. The pending
// slot is populated only by the server's attachment-added response.
func (c *Client) Attach(f FileSource) error {
	c.mu.Lock()
	if c.state != StateOpen {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ceiling := c.cfg.Limits.EncodedAttachmentCeiling()
	c.mu.Unlock()

	if f.Size() > ceiling {
		return ErrAttachmentTooLarge
	}

	data, err := f.Read()
	if err != nil {
		return &SessionError{Op: "attach", Err: err}
	}

	name := f.Name()
	var namePtr *string
	if name != "" {
		namePtr = &name
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return ErrNotConnected
	}
	return c.sendLocked(protocol.EventAddAttachment, protocol.AddAttachment{
		Name: namePtr,
		Data: base64.StdEncoding.EncodeToString(data),
	})
}

// Unattach discards the pending attachment reference.
func (c *Client) Unattach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := c.attachments.Clear()
	c.renderer.AttachmentChanged(ch)
}

// FetchAttachment asks the server for the content of an attachment.
func (c *Client) FetchAttachment(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return ErrNotConnected
	}
	return c.sendLocked(protocol.EventFetchAttachment, protocol.FetchAttachment{ID: id})
}

// sendLocked encodes and writes one outbound event. A write failure is
// terminal: it notifies and tears the session down before returning.
func (c *Client) sendLocked(t protocol.EventType, payload any) error {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		return &SessionError{Op: "encode", Err: err}
	}
	if c.transport == nil {
		return ErrNotConnected
	}
	if err := c.transport.Send(string(frame)); err != nil {
		c.logger.Error("send failed", "type", string(t), "error", err)
		c.failLocked(NoticeError, "connection error: "+err.Error())
		return &SessionError{Op: "send", Err: err}
	}
	c.metrics.frameSent(len(frame))
	return nil
}

// failLocked surfaces a notice and tears the session down. Every error
// path (transport, protocol, server-sent) funnels through here.
func (c *Client) failLocked(kind NoticeKind, text string) {
	c.renderer.Notice(kind, text)
	c.teardownLocked()
}

// teardownLocked is the single idempotent teardown. It closes and
// discards the transport, clears the message log, resets the edit and
// attachment state machines, and returns the client to StateDisconnected.
// No error path may leave stale draft state for a subsequent session.
func (c *Client) teardownLocked() {
	if c.state == StateDisconnected && c.transport == nil {
		return
	}

	if c.transport != nil {
		c.transport.Close()
		c.transport = nil
	}

	c.state = StateDisconnected
	c.draft = ""
	c.log.Clear()
	c.edit.reset()
	c.attachments.Clear()

	c.metrics.teardown()
	c.metrics.setState(StateDisconnected)
	c.metrics.setLogSize(0)

	c.renderer.Reset()
	c.logger.Info("session closed", "address", c.address)
}
