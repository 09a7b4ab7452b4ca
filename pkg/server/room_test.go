package server

import (
	"testing"
	"time"
)

func newTestRoom(limit int) *room {
	r := newRoom(limit)
	r.now = func() time.Time {
		return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func TestRoomPostAssignsPerSenderIDs(t *testing.T) {
	r := newTestRoom(16)

	a1 := r.post("alice", "one", nil)
	a2 := r.post("alice", "two", nil)
	b1 := r.post("bob", "three", nil)

	if *a1.ID != 1 || *a2.ID != 2 {
		t.Errorf("alice ids = %d, %d, want 1, 2", *a1.ID, *a2.ID)
	}
	if *b1.ID != 1 {
		t.Errorf("bob id = %d, want 1", *b1.ID)
	}
	if a1.Timestamp == "" {
		t.Error("timestamp not set")
	}
}

func TestRoomJoinRejectsTakenNickname(t *testing.T) {
	r := newTestRoom(16)
	s1 := &session{}
	s2 := &session{}

	if _, err := r.join(s1, "alice"); err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if _, err := r.join(s2, "alice"); err == nil {
		t.Fatal("join() with taken nickname error = nil, want non-nil")
	}

	// Leaving frees the nickname for reuse.
	r.leave(s1, "alice")
	if _, err := r.join(s2, "alice"); err != nil {
		t.Errorf("join() after leave error = %v", err)
	}
}

func TestRoomJoinReturnsHistorySnapshot(t *testing.T) {
	r := newTestRoom(16)
	r.post("alice", "first", nil)
	r.postSystem("alice joined")

	history, err := r.join(&session{}, "bob")
	if err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Text != "first" {
		t.Errorf("history[0].Text = %q, want %q", history[0].Text, "first")
	}
	if history[1].Sender != nil {
		t.Error("system message has a sender")
	}
}

func TestRoomHistoryBounded(t *testing.T) {
	r := newTestRoom(3)
	for i := 0; i < 5; i++ {
		r.post("alice", "msg", nil)
	}

	history, err := r.join(&session{}, "bob")
	if err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if *history[0].ID != 3 {
		t.Errorf("oldest retained id = %d, want 3", *history[0].ID)
	}
}

func TestRoomEditUpdatesRetainedMessage(t *testing.T) {
	r := newTestRoom(16)
	m := r.post("alice", "typo", nil)

	att := "att-1"
	updated, ok := r.edit("alice", *m.ID, "fixed", &att)
	if !ok {
		t.Fatal("edit() = false, want true")
	}
	if updated.Text != "fixed" {
		t.Errorf("updated.Text = %q, want %q", updated.Text, "fixed")
	}
	if updated.Attachment == nil || *updated.Attachment != "att-1" {
		t.Errorf("updated.Attachment = %v, want att-1", updated.Attachment)
	}

	history, _ := r.join(&session{}, "bob")
	if history[0].Text != "fixed" {
		t.Errorf("retained text = %q, want %q", history[0].Text, "fixed")
	}
}

func TestRoomEditWrongSenderMisses(t *testing.T) {
	r := newTestRoom(16)
	m := r.post("alice", "hers", nil)

	if _, ok := r.edit("bob", *m.ID, "his", nil); ok {
		t.Error("edit() across senders = true, want false")
	}
}

func TestRoomRemove(t *testing.T) {
	r := newTestRoom(16)
	m := r.post("alice", "gone", nil)
	r.post("alice", "stays", nil)

	if !r.remove("alice", *m.ID) {
		t.Fatal("remove() = false, want true")
	}
	if r.remove("alice", *m.ID) {
		t.Error("second remove() = true, want false")
	}

	history, _ := r.join(&session{}, "bob")
	if len(history) != 1 || history[0].Text != "stays" {
		t.Errorf("history after remove = %+v, want only %q", history, "stays")
	}
}
