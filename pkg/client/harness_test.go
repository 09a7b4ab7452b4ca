package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/parley-chat/parley/pkg/protocol"
)

// fakeTransport is a scripted transport: it records outbound frames and
// lets tests inject server frames and transport-level events.
type fakeTransport struct {
	ev          TransportEvents
	sent        []string
	sendErr     error
	started     bool
	closed      bool
	openOnStart bool
}

func (t *fakeTransport) Start() {
	t.started = true
	if t.openOnStart && t.ev.OnOpen != nil {
		t.ev.OnOpen()
	}
}

func (t *fakeTransport) Send(text string) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, text)
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

// serverSend injects an inbound frame as if the server had sent it.
func (t *fakeTransport) serverSend(frame string) {
	t.ev.OnMessage(frame)
}

// lastSent decodes the most recent outbound frame into a generic object.
func (t *fakeTransport) lastSent(tb testing.TB) map[string]any {
	tb.Helper()
	if len(t.sent) == 0 {
		tb.Fatal("no frames sent")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(t.sent[len(t.sent)-1]), &obj); err != nil {
		tb.Fatalf("outbound frame is not JSON: %v", err)
	}
	return obj
}

type renderedEntry struct {
	m   *Message
	pos Position
}

type noticeEntry struct {
	kind NoticeKind
	text string
}

type removedKey struct {
	sender string
	id     int64
}

// recordingRenderer records every directive the engine emits.
type recordingRenderer struct {
	rendered    []renderedEntry
	updated     []*Message
	removed     []removedKey
	notices     []noticeEntry
	attachments []AttachmentChange
	opened      int
	resets      int

	// onRender, when set, observes the engine mid-directive (used to
	// check batch atomicity).
	onRender func(m *Message)
}

func (r *recordingRenderer) Render(m *Message, pos Position) {
	if r.onRender != nil {
		r.onRender(m)
	}
	r.rendered = append(r.rendered, renderedEntry{m: m, pos: pos})
}

func (r *recordingRenderer) Update(m *Message) { r.updated = append(r.updated, m) }

func (r *recordingRenderer) Remove(sender string, id int64) {
	r.removed = append(r.removed, removedKey{sender: sender, id: id})
}

func (r *recordingRenderer) Notice(kind NoticeKind, text string) {
	r.notices = append(r.notices, noticeEntry{kind: kind, text: text})
}

func (r *recordingRenderer) AttachmentChanged(ch AttachmentChange) {
	r.attachments = append(r.attachments, ch)
}

func (r *recordingRenderer) SessionOpened() { r.opened++ }
func (r *recordingRenderer) Reset()         { r.resets++ }

// recordingDownloader captures fetched attachments.
type recordingDownloader struct {
	name string
	data []byte
	err  error
}

func (d *recordingDownloader) SaveAttachment(name string, data []byte) error {
	d.name = name
	d.data = data
	return d.err
}

// memFile is an in-memory FileSource.
type memFile struct {
	name    string
	size    int64
	data    []byte
	read    bool
	readErr error
}

func (f *memFile) Name() string { return f.name }
func (f *memFile) Size() int64  { return f.size }
func (f *memFile) Read() ([]byte, error) {
	f.read = true
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.data, nil
}

// newTestClient wires a Client to a fake transport and recording
// renderer. The affordance window is small so pruning is reachable.
func newTestClient(t *testing.T, window int) (*Client, *fakeTransport, *recordingRenderer, *recordingDownloader) {
	t.Helper()

	ft := &fakeTransport{openOnStart: true}
	rr := &recordingRenderer{}
	dl := &recordingDownloader{}

	limits := protocol.DefaultLimits()
	limits.HistoryWindow = window

	cfg := DefaultConfig()
	cfg.Limits = limits
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	c := New(cfg, rr, dl, func(ctx context.Context, address string, ev TransportEvents) (Transport, error) {
		ft.ev = ev
		return ft, nil
	})
	return c, ft, rr, dl
}

// openSession connects and completes the welcome handshake.
func openSession(t *testing.T, c *Client, ft *fakeTransport) {
	t.Helper()
	if err := c.Connect(context.Background(), "10.0.0.1:8080", "bob"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	ft.serverSend(`{"type":"welcome"}`)
	if got := c.State(); got != StateOpen {
		t.Fatalf("State() = %v, want %v", got, StateOpen)
	}
}

// sendChat injects an inbound chat message.
func sendChat(ft *fakeTransport, sender string, id int64, text string) {
	b, _ := json.Marshal(map[string]any{
		"type":      "message",
		"sender":    sender,
		"id":        id,
		"text":      text,
		"timestamp": "2024-05-01T12:00:00Z",
	})
	ft.serverSend(string(b))
}

// sendMeta injects an inbound system message (no sender, no id).
func sendMeta(ft *fakeTransport, text string) {
	b, _ := json.Marshal(map[string]any{
		"type":      "message",
		"text":      text,
		"timestamp": "2024-05-01T12:00:00Z",
	})
	ft.serverSend(string(b))
}

// failingDialer always fails.
func failingDialer(ctx context.Context, address string, ev TransportEvents) (Transport, error) {
	return nil, errors.New("connection refused")
}
