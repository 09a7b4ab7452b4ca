package client

import (
	"encoding/base64"
	"errors"
	"time"

	"github.com/parley-chat/parley/pkg/protocol"
)

// handleFrameLocked decodes one inbound frame and routes it. Any decode
// failure (malformed JSON, missing type, unknown type, one bad field)
// is the same fail-closed path: surface a notice and tear the session
// down. The offending event is never partially applied.
func (c *Client) handleFrameLocked(data []byte) {
	ev, err := protocol.Decode(data)
	if err != nil {
		c.metrics.frameRejected(rejectReason(err))
		c.logger.Error("rejected inbound frame", "error", err)
		c.failLocked(NoticeError, "protocol violation: "+err.Error())
		return
	}

	c.metrics.eventReceived(string(ev.Type))
	c.dispatchLocked(ev)
}

// rejectReason maps a decode error onto a stable metrics label.
func rejectReason(err error) string {
	var unknown *protocol.UnknownEventError
	var invalid *protocol.ValidationError
	switch {
	case errors.Is(err, protocol.ErrParse):
		return "parse"
	case errors.Is(err, protocol.ErrSchema):
		return "schema"
	case errors.As(err, &unknown):
		return "unknown-type"
	case errors.As(err, &invalid):
		return "validation"
	default:
		return "other"
	}
}

// dispatchLocked routes a validated event to its handler. The event set
// is closed; Decode guarantees Type is recognized, and the default arm
// keeps the posture fail-closed should that ever stop holding.
func (c *Client) dispatchLocked(ev *protocol.Event) {
	switch ev.Type {
	case protocol.EventWelcome:
		c.handleWelcomeLocked()

	case protocol.EventBye:
		c.failLocked(NoticeKicked, "you've been kicked")

	case protocol.EventError:
		c.failLocked(NoticeError, ev.Error.Message)

	case protocol.EventMessage:
		c.applyMessagesLocked([]protocol.Message{*ev.Message}, false)

	case protocol.EventMessages:
		c.applyMessagesLocked(ev.Messages.Messages, ev.Messages.Prepend)

	case protocol.EventMessageUpdated:
		c.handleMessageUpdatedLocked(ev.MessageUpdated)

	case protocol.EventMessageDeleted:
		c.handleMessageDeletedLocked(ev.MessageDeleted)

	case protocol.EventAttachmentAdded:
		ch := c.attachments.Set(ev.AttachmentAdded.ID)
		c.renderer.AttachmentChanged(ch)

	case protocol.EventAttachmentFetched:
		c.handleAttachmentFetchedLocked(ev.AttachmentFetched)

	default:
		c.logger.Error("unroutable event", "type", string(ev.Type))
		c.failLocked(NoticeError, "protocol violation: unroutable event")
	}
}

// handleWelcomeLocked transitions Connecting → Open. The conversation
// view stays gated until this point; transport-open alone only triggers
// the join.
func (c *Client) handleWelcomeLocked() {
	if c.state != StateConnecting {
		return
	}
	c.state = StateOpen
	c.metrics.setState(StateOpen)
	c.renderer.SessionOpened()
	c.logger.Info("session open", "address", c.address, "nickname", c.nickname)
}

// applyMessagesLocked applies a batch of messages as one atomic unit:
// every entry is inserted into the log before the renderer sees any of
// them, so a collaborator-triggered re-render can never observe a
// partially applied batch.
func (c *Client) applyMessagesLocked(msgs []protocol.Message, prepend bool) {
	entries := make([]*Message, len(msgs))
	for i, wm := range msgs {
		entries[i] = fromWire(wm)
	}

	var prunedEntries []*Message
	if prepend {
		c.log.Prepend(entries)
	} else {
		for _, m := range entries {
			if pruned := c.log.Append(m); pruned != nil {
				c.metrics.affordancePruned()
				prunedEntries = append(prunedEntries, pruned)
			}
		}
	}
	c.metrics.setLogSize(c.log.Len())

	if prepend {
		// Newest-first, so a consumer that inserts each prepend directive
		// at the top of its view ends up in the log's order.
		for i := len(entries) - 1; i >= 0; i-- {
			c.renderer.Render(entries[i], PositionPrepend)
		}
	} else {
		for _, m := range entries {
			c.renderer.Render(m, PositionAppend)
		}
	}
	for _, m := range prunedEntries {
		c.renderer.Update(m)
	}
}

func (c *Client) handleMessageUpdatedLocked(u *protocol.MessageUpdated) {
	m := c.log.Update(u.Sender, u.ID, u.Text, u.Attachment, parseTimestamp(u.Timestamp))
	if m == nil {
		// Unknown (sender, id) pairs are a no-op, not an error: the
		// entry may predate this session's history window.
		return
	}
	c.renderer.Update(m)
}

func (c *Client) handleMessageDeletedLocked(d *protocol.MessageDeleted) {
	if removed := c.log.Delete(d.Sender, d.ID); removed == 0 {
		return
	}
	c.metrics.setLogSize(c.log.Len())
	c.renderer.Remove(d.Sender, d.ID)
}

func (c *Client) handleAttachmentFetchedLocked(f *protocol.AttachmentFetched) {
	if f.Data == nil {
		c.renderer.Notice(NoticeAttachmentExpired, "attachment is no longer available")
		return
	}

	raw, err := base64.StdEncoding.DecodeString(*f.Data)
	if err != nil {
		c.logger.Error("undecodable attachment data", "error", err)
		c.failLocked(NoticeError, "protocol violation: undecodable attachment data")
		return
	}

	name := "attachment"
	if f.Name != nil {
		name = *f.Name
	}
	if c.downloader == nil {
		c.logger.Warn("attachment fetched but no downloader configured", "name", name)
		return
	}
	if err := c.downloader.SaveAttachment(name, raw); err != nil {
		c.logger.Error("attachment save failed", "name", name, "error", err)
		c.renderer.Notice(NoticeError, "couldn't save attachment: "+err.Error())
	}
}

// fromWire converts a validated wire message into a log entry.
func fromWire(wm protocol.Message) *Message {
	return &Message{
		Sender:     wm.Sender,
		ID:         wm.ID,
		Text:       wm.Text,
		Attachment: wm.Attachment,
		Timestamp:  parseTimestamp(wm.Timestamp),
	}
}

// parseTimestamp converts a wire timestamp. The server speaks RFC 3339;
// an unparseable value displays as the zero time; timestamps are
// presentation data, not protocol structure.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
