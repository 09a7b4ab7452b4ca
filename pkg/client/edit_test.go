package client

import (
	"errors"
	"testing"
)

func TestCommitSendsMessage(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	c.SetDraft("  hello world  ")
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	frame := ft.lastSent(t)
	if frame["type"] != "message" {
		t.Errorf("type = %v, want message", frame["type"])
	}
	if frame["text"] != "hello world" {
		t.Errorf("text = %v, want trimmed %q", frame["text"], "hello world")
	}
	if frame["attachment"] != nil {
		t.Errorf("attachment = %v, want null", frame["attachment"])
	}
	if c.Draft() != "" {
		t.Errorf("Draft() = %q after commit, want empty", c.Draft())
	}
}

func TestCommitConsumesPendingAttachment(t *testing.T) {
	c, ft, rr, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	ft.serverSend(`{"type":"attachment-added","id":"att-1"}`)
	c.SetDraft("see attached")
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	frame := ft.lastSent(t)
	if frame["attachment"] != "att-1" {
		t.Errorf("attachment = %v, want att-1", frame["attachment"])
	}
	if c.attachments.Pending() != nil {
		t.Error("pending attachment survived the compose reset")
	}
	last := rr.attachments[len(rr.attachments)-1]
	if last.Pending != nil {
		t.Errorf("final AttachmentChange.Pending = %v, want nil", last.Pending)
	}
}

func TestCommitAttachmentOnlyMessage(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	ft.serverSend(`{"type":"attachment-added","id":"att-1"}`)
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	frame := ft.lastSent(t)
	if frame["type"] != "message" || frame["text"] != "" {
		t.Errorf("frame = %v, want empty-text message", frame)
	}
	if frame["attachment"] != "att-1" {
		t.Errorf("attachment = %v, want att-1", frame["attachment"])
	}
}

func TestCommitEmptyDraftIsSilentNoop(t *testing.T) {
	c, ft, rr, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sentBefore := len(ft.sent)

	c.SetDraft("   \n\t ")
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if len(ft.sent) != sentBefore {
		t.Error("empty commit produced network traffic")
	}
	if len(rr.notices) != 0 {
		t.Errorf("notices = %v, want none (silent no-op)", rr.notices)
	}
}

func TestCommitEmptyKeepsActiveEdit(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sendChat(ft, "bob", 5, "my message")

	if err := c.BeginEdit("bob", 5); err != nil {
		t.Fatalf("BeginEdit() error = %v", err)
	}
	c.SetDraft("")
	sentBefore := len(ft.sent)

	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if len(ft.sent) != sentBefore {
		t.Error("empty commit produced network traffic")
	}
	if id, active := c.edit.ActiveID(); !active || id != 5 {
		t.Errorf("edit state = (%d, %v), want active id 5 unchanged", id, active)
	}
}

func TestCommitActiveEditSendsEditMessage(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sendChat(ft, "bob", 5, "my message")

	if err := c.BeginEdit("bob", 5); err != nil {
		t.Fatalf("BeginEdit() error = %v", err)
	}
	c.SetDraft("my message, fixed")
	if err := c.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	frame := ft.lastSent(t)
	if frame["type"] != "edit-message" {
		t.Errorf("type = %v, want edit-message", frame["type"])
	}
	if frame["id"] != float64(5) {
		t.Errorf("id = %v, want 5", frame["id"])
	}
	if frame["text"] != "my message, fixed" {
		t.Errorf("text = %v", frame["text"])
	}
	if c.edit.Active() {
		t.Error("edit session still active after commit")
	}
	// Commit discards the backup: draft is reset, not restored.
	if c.Draft() != "" {
		t.Errorf("Draft() = %q, want empty", c.Draft())
	}
}

func TestBeginEditLoadsTarget(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sendChat(ft, "bob", 5, "my message")

	c.SetDraft("half-typed draft")
	if err := c.BeginEdit("bob", 5); err != nil {
		t.Fatalf("BeginEdit() error = %v", err)
	}

	if c.Draft() != "my message" {
		t.Errorf("Draft() = %q, want the target's text", c.Draft())
	}
}

func TestBeginEditTwiceKeepsOriginalBackup(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sendChat(ft, "bob", 5, "message A")
	sendChat(ft, "bob", 6, "message B")

	c.SetDraft("the original draft")
	ft.serverSend(`{"type":"attachment-added","id":"att-0"}`)

	if err := c.BeginEdit("bob", 5); err != nil {
		t.Fatalf("BeginEdit(A) error = %v", err)
	}
	if err := c.BeginEdit("bob", 6); err != nil {
		t.Fatalf("BeginEdit(B) error = %v", err)
	}
	if c.Draft() != "message B" {
		t.Errorf("Draft() = %q, want message B", c.Draft())
	}

	// Cancel restores the state before BeginEdit(A), not A's content.
	c.CancelEdit()
	if c.Draft() != "the original draft" {
		t.Errorf("Draft() after cancel = %q, want %q", c.Draft(), "the original draft")
	}
	if p := c.attachments.Pending(); p == nil || *p != "att-0" {
		t.Errorf("Pending() after cancel = %v, want att-0", p)
	}
}

func TestBeginEditUnknownMessage(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	if err := c.BeginEdit("bob", 99); !errors.Is(err, ErrNoSuchMessage) {
		t.Errorf("BeginEdit() error = %v, want ErrNoSuchMessage", err)
	}
}

func TestBeginEditPrunedMessage(t *testing.T) {
	const window = 2
	c, ft, _, _ := newTestClient(t, window)
	openSession(t, c, ft)

	sendChat(ft, "bob", 1, "old")
	sendChat(ft, "bob", 2, "mid")
	sendChat(ft, "bob", 3, "new")

	if err := c.BeginEdit("bob", 1); !errors.Is(err, ErrNotEditable) {
		t.Errorf("BeginEdit(pruned) error = %v, want ErrNotEditable", err)
	}
	if err := c.BeginEdit("bob", 3); err != nil {
		t.Errorf("BeginEdit(in window) error = %v", err)
	}
}

func TestCancelWithoutActiveEdit(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	c.SetDraft("typing")
	c.CancelEdit()
	if c.Draft() != "typing" {
		t.Errorf("Draft() = %q, want untouched", c.Draft())
	}
}

func TestDeleteSendsDeleteMessage(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)
	sendChat(ft, "bob", 5, "my message")

	if err := c.Delete(5); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	frame := ft.lastSent(t)
	if frame["type"] != "delete-message" || frame["id"] != float64(5) {
		t.Errorf("frame = %v, want delete-message id 5", frame)
	}

	// Log entry is removed only by the server's confirmation.
	if c.log.Len() != 1 {
		t.Errorf("log.Len() = %d, want 1", c.log.Len())
	}
	ft.serverSend(`{"type":"message-deleted","sender":"bob","id":5}`)
	if c.log.Len() != 0 {
		t.Errorf("log.Len() = %d after confirmation, want 0", c.log.Len())
	}
}

func TestAttachRejectsOversizedFile(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	f := &memFile{name: "big.bin", size: 1 << 30}
	if err := c.Attach(f); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Fatalf("Attach() error = %v, want ErrAttachmentTooLarge", err)
	}
	if f.read {
		t.Error("oversized file was read; the ceiling check must come first")
	}
}

func TestAttachSendsEncodedContent(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	f := &memFile{name: "notes.txt", size: 5, data: []byte("hello")}
	if err := c.Attach(f); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	frame := ft.lastSent(t)
	if frame["type"] != "add-attachment" {
		t.Errorf("type = %v, want add-attachment", frame["type"])
	}
	if frame["name"] != "notes.txt" {
		t.Errorf("name = %v, want notes.txt", frame["name"])
	}
	if frame["data"] != "aGVsbG8=" {
		t.Errorf("data = %v, want base64 of hello", frame["data"])
	}

	// Pending is set only by the server acknowledgement.
	if c.attachments.Pending() != nil {
		t.Error("Attach set the pending slot before the server acknowledged")
	}
}

func TestUnattachClearsPendingSlot(t *testing.T) {
	c, ft, rr, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	ft.serverSend(`{"type":"attachment-added","id":"att-1"}`)
	c.Unattach()

	if c.attachments.Pending() != nil {
		t.Error("Pending() != nil after Unattach")
	}
	last := rr.attachments[len(rr.attachments)-1]
	if last.Previous == nil || *last.Previous != "att-1" || last.Pending != nil {
		t.Errorf("AttachmentChange = %+v, want att-1 → nil", last)
	}
}

func TestFetchAttachmentSendsRequest(t *testing.T) {
	c, ft, _, _ := newTestClient(t, 128)
	openSession(t, c, ft)

	if err := c.FetchAttachment("att-9"); err != nil {
		t.Fatalf("FetchAttachment() error = %v", err)
	}
	frame := ft.lastSent(t)
	if frame["type"] != "fetch-attachment" || frame["id"] != "att-9" {
		t.Errorf("frame = %v, want fetch-attachment att-9", frame)
	}
}

func TestUserActionsRequireOpenSession(t *testing.T) {
	c, _, _, _ := newTestClient(t, 128)

	c.SetDraft("hello")
	if err := c.Commit(); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Commit() error = %v, want ErrNotConnected", err)
	}
	if err := c.Delete(1); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Delete() error = %v, want ErrNotConnected", err)
	}
	if err := c.FetchAttachment("a"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("FetchAttachment() error = %v, want ErrNotConnected", err)
	}
	if err := c.Attach(&memFile{size: 1}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Attach() error = %v, want ErrNotConnected", err)
	}
}
