package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/parley-chat/parley/pkg/protocol"
)

// room is the single conversation: connected sessions, retained history,
// and the per-sender id counters. All methods are safe for concurrent use
// by session goroutines.
type room struct {
	mu sync.Mutex

	sessions map[*session]struct{}
	byNick   map[string]*session

	history      []protocol.Message
	historyLimit int

	nextID map[string]int64

	now func() time.Time
}

func newRoom(historyLimit int) *room {
	return &room{
		sessions:     make(map[*session]struct{}),
		byNick:       make(map[string]*session),
		history:      make([]protocol.Message, 0, historyLimit),
		historyLimit: historyLimit,
		nextID:       make(map[string]int64),
		now:          time.Now,
	}
}

// join registers a session under its nickname and returns the history
// snapshot to replay. The nickname must be unused.
func (r *room) join(s *session, nickname string) ([]protocol.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byNick[nickname]; taken {
		return nil, fmt.Errorf("nickname %q is taken", nickname)
	}
	r.sessions[s] = struct{}{}
	r.byNick[nickname] = s

	snapshot := make([]protocol.Message, len(r.history))
	copy(snapshot, r.history)
	return snapshot, nil
}

// leave removes a session. It is a no-op for sessions that never joined.
func (r *room) leave(s *session, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, s)
	if nickname != "" && r.byNick[nickname] == s {
		delete(r.byNick, nickname)
	}
}

// post appends a new message from sender, assigns its id, and returns it.
func (r *room) post(sender, text string, attachment *string) protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID[sender]++
	id := r.nextID[sender]

	m := protocol.Message{
		Sender:     &sender,
		ID:         &id,
		Text:       text,
		Attachment: attachment,
		Timestamp:  r.timestampLocked(),
	}
	r.appendLocked(m)
	return m
}

// postSystem appends a system message (no sender, no id) and returns it.
func (r *room) postSystem(text string) protocol.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := protocol.Message{
		Text:      text,
		Timestamp: r.timestampLocked(),
	}
	r.appendLocked(m)
	return m
}

// edit replaces the text and attachment of sender's message id. It
// returns the updated wire form, or false when no such message is
// retained. Only the sender's own messages are reachable: the id lives in
// the sender's namespace.
func (r *room) edit(sender string, id int64, text string, attachment *string) (protocol.MessageUpdated, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.history {
		m := &r.history[i]
		if m.Sender == nil || m.ID == nil || *m.Sender != sender || *m.ID != id {
			continue
		}
		m.Text = text
		m.Attachment = attachment
		m.Timestamp = r.timestampLocked()
		return protocol.MessageUpdated{
			Sender:     sender,
			ID:         id,
			Text:       m.Text,
			Attachment: m.Attachment,
			Timestamp:  m.Timestamp,
		}, true
	}
	return protocol.MessageUpdated{}, false
}

// remove deletes sender's message id from the retained history. It
// reports whether anything was removed.
func (r *room) remove(sender string, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.history[:0]
	removed := false
	for _, m := range r.history {
		if m.Sender != nil && m.ID != nil && *m.Sender == sender && *m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	r.history = kept
	return removed
}

// broadcast sends an event to every connected session. Sessions whose
// writes fail close themselves; broadcast does not wait on them.
func (r *room) broadcast(t protocol.EventType, payload any) {
	r.mu.Lock()
	targets := make([]*session, 0, len(r.sessions))
	for s := range r.sessions {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	for _, s := range targets {
		s.send(t, payload)
	}
}

func (r *room) appendLocked(m protocol.Message) {
	r.history = append(r.history, m)
	if len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}
}

func (r *room) timestampLocked() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}
