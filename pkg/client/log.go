package client

import "time"

// Message is one entry of the local conversation log.
//
// Sender is nil for system/meta messages, which also carry no ID and are
// excluded from keyed lookup and from edit/delete eligibility. Identity
// for update/delete purposes is the compound pair (sender, id).
type Message struct {
	Sender     *string
	ID         *int64
	Text       string
	Attachment *string
	Timestamp  time.Time
	Edited     bool

	// affordance is the interactive edit/delete capability. Granted on
	// insert to id-bearing messages, stripped permanently once the entry
	// ages out of the history window. Content is never pruned.
	affordance bool
}

// Editable reports whether the message still carries its edit/delete
// affordance.
func (m *Message) Editable() bool { return m.affordance }

// keyed reports whether the message participates in (sender, id) lookup.
func (m *Message) keyed() bool { return m.Sender != nil && m.ID != nil }

// matches reports whether the message is identified by (sender, id).
func (m *Message) matches(sender string, id int64) bool {
	return m.keyed() && *m.Sender == sender && *m.ID == id
}

// MessageLog is the ordered, keyed store of messages. Insertion order is
// arrival/display order. Entries never expire from the sequence; they only
// lose their affordance as the log outgrows the history window.
//
// Lookups are linear scans over the full log. That is the contract: the
// log is bounded by one conversation and correctness beats an index.
type MessageLog struct {
	entries []*Message
	window  int
}

// NewMessageLog returns an empty log with the given affordance window.
func NewMessageLog(window int) *MessageLog {
	return &MessageLog{window: window}
}

// Len returns the number of entries.
func (l *MessageLog) Len() int { return len(l.entries) }

// At returns the entry at display offset i from the oldest end.
func (l *MessageLog) At(i int) *Message { return l.entries[i] }

// Find returns the entry identified by (sender, id), or nil.
func (l *MessageLog) Find(sender string, id int64) *Message {
	for _, m := range l.entries {
		if m.matches(sender, id) {
			return m
		}
	}
	return nil
}

// Append adds a message at the newest end. An id-bearing append advances
// the affordance window: if the log has grown past the window, the single
// entry at offset len-window-1, the one that just aged out, permanently
// loses its affordance, and Append returns that entry when it actually
// carried one so the caller can refresh its rendering. Senderless appends
// never advance the window, and entries without a sender never had an
// affordance to lose.
func (l *MessageLog) Append(m *Message) (pruned *Message) {
	if m.keyed() {
		m.affordance = true
	}
	l.entries = append(l.entries, m)

	if !m.keyed() || len(l.entries) <= l.window {
		return nil
	}
	aged := l.entries[len(l.entries)-l.window-1]
	if aged.affordance {
		aged.affordance = false
		return aged
	}
	return nil
}

// Prepend inserts a batch of history before the existing entries,
// preserving the batch's internal order. Prepending never advances the
// affordance window.
func (l *MessageLog) Prepend(batch []*Message) {
	for _, m := range batch {
		if m.keyed() {
			m.affordance = true
		}
	}
	l.entries = append(batch, l.entries...)
}

// Update replaces the text, attachment, and timestamp of the entry
// identified by (sender, id), marks it edited, and returns it. Position
// in the log is preserved. An absent key is a no-op returning nil.
func (l *MessageLog) Update(sender string, id int64, text string, attachment *string, ts time.Time) *Message {
	m := l.Find(sender, id)
	if m == nil {
		return nil
	}
	m.Text = text
	m.Attachment = attachment
	m.Timestamp = ts
	m.Edited = true
	return m
}

// Delete removes every entry identified by (sender, id), normally
// exactly one, and returns how many were removed.
func (l *MessageLog) Delete(sender string, id int64) int {
	kept := l.entries[:0]
	removed := 0
	for _, m := range l.entries {
		if m.matches(sender, id) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = nil
	}
	l.entries = kept
	return removed
}

// Clear empties the log.
func (l *MessageLog) Clear() {
	l.entries = nil
}
