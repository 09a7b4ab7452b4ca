package client

import (
	"testing"
	"time"
)

func strptr(s string) *string { return &s }
func idptr(n int64) *int64    { return &n }

func chatMsg(sender string, id int64, text string) *Message {
	return &Message{Sender: strptr(sender), ID: idptr(id), Text: text, Timestamp: time.Unix(0, 0)}
}

func TestMessageLogFindUsesCompoundKey(t *testing.T) {
	l := NewMessageLog(128)
	l.Append(chatMsg("alice", 1, "a"))
	l.Append(chatMsg("bob", 1, "b"))

	m := l.Find("bob", 1)
	if m == nil || m.Text != "b" {
		t.Fatalf("Find(bob, 1) = %v, want bob's entry", m)
	}
	if l.Find("carol", 1) != nil {
		t.Error("Find(carol, 1) != nil, want nil")
	}
}

func TestMessageLogFindExcludesSystemMessages(t *testing.T) {
	l := NewMessageLog(128)
	l.Append(&Message{Text: "system", Timestamp: time.Unix(0, 0)})

	if l.Find("", 0) != nil {
		t.Error("system message must not participate in keyed lookup")
	}
}

func TestMessageLogUpdatePreservesPosition(t *testing.T) {
	l := NewMessageLog(128)
	l.Append(chatMsg("alice", 1, "a"))
	l.Append(chatMsg("alice", 2, "b"))
	l.Append(chatMsg("alice", 3, "c"))

	ts := time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC)
	att := strptr("att-1")
	m := l.Update("alice", 2, "b2", att, ts)

	if m == nil {
		t.Fatal("Update returned nil for a present key")
	}
	if l.At(1) != m {
		t.Error("updated entry moved in the log")
	}
	if !m.Edited || m.Text != "b2" || m.Attachment != att || !m.Timestamp.Equal(ts) {
		t.Errorf("entry after update = %+v", m)
	}
}

func TestMessageLogUpdateAbsentKey(t *testing.T) {
	l := NewMessageLog(128)
	l.Append(chatMsg("alice", 1, "a"))

	if m := l.Update("alice", 2, "x", nil, time.Time{}); m != nil {
		t.Errorf("Update(absent) = %v, want nil", m)
	}
	if l.At(0).Text != "a" || l.At(0).Edited {
		t.Error("absent-key update mutated the log")
	}
}

func TestMessageLogDeleteRemovesEveryMatch(t *testing.T) {
	l := NewMessageLog(128)
	l.Append(chatMsg("alice", 1, "a"))
	l.Append(chatMsg("alice", 1, "duplicate"))
	l.Append(chatMsg("alice", 2, "b"))

	if n := l.Delete("alice", 1); n != 2 {
		t.Errorf("Delete() = %d, want 2", n)
	}
	if l.Len() != 1 || *l.At(0).ID != 2 {
		t.Errorf("log after delete = %d entries", l.Len())
	}

	if n := l.Delete("alice", 99); n != 0 {
		t.Errorf("Delete(absent) = %d, want 0", n)
	}
	if l.Len() != 1 {
		t.Errorf("absent-key delete changed the log: len = %d", l.Len())
	}
}

func TestMessageLogPrependDoesNotAdvanceWindow(t *testing.T) {
	l := NewMessageLog(2)
	l.Append(chatMsg("alice", 10, "a"))
	l.Append(chatMsg("alice", 11, "b"))

	l.Prepend([]*Message{
		chatMsg("alice", 1, "old1"),
		chatMsg("alice", 2, "old2"),
	})

	if l.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", l.Len())
	}
	for i := 0; i < 4; i++ {
		if !l.At(i).Editable() {
			t.Errorf("log[%d] lost affordance on prepend", i)
		}
	}
}

func TestMessageLogSenderlessAppendDoesNotAdvanceWindow(t *testing.T) {
	l := NewMessageLog(2)
	l.Append(chatMsg("alice", 1, "a"))
	l.Append(chatMsg("alice", 2, "b"))

	if pruned := l.Append(&Message{Text: "alice joined", Timestamp: time.Unix(0, 0)}); pruned != nil {
		t.Fatalf("pruned = %v, want nil (system append)", pruned)
	}
	if !l.At(0).Editable() || !l.At(1).Editable() {
		t.Error("id-bearing entry lost its affordance on a system append")
	}

	// The next id-bearing append strips exactly the entry at the window
	// boundary, now offset 1.
	pruned := l.Append(chatMsg("alice", 3, "c"))
	if pruned == nil || *pruned.ID != 2 {
		t.Errorf("pruned = %v, want entry 2", pruned)
	}
}

func TestMessageLogAppendPruneIsMonotonic(t *testing.T) {
	l := NewMessageLog(1)
	l.Append(chatMsg("alice", 1, "a"))

	pruned := l.Append(chatMsg("alice", 2, "b"))
	if pruned == nil || *pruned.ID != 1 {
		t.Fatalf("pruned = %v, want entry 1", pruned)
	}

	// A second pass over the same offset finds nothing left to strip.
	l.Delete("alice", 2)
	if pruned := l.Append(chatMsg("alice", 3, "c")); pruned != nil {
		t.Errorf("pruned = %v, want nil (stripping is one-time)", pruned)
	}
}
