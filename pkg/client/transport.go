package client

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/parley-chat/parley/pkg/protocol"
)

// TransportEvents are the callbacks a Transport delivers to the engine.
// All callbacks for one transport are delivered sequentially.
type TransportEvents struct {
	// OnOpen fires once when the transport is ready to carry frames.
	OnOpen func()

	// OnMessage delivers one inbound text frame.
	OnMessage func(text string)

	// OnError reports a transport-level failure. Terminal; OnClose
	// follows.
	OnError func(err error)

	// OnClose fires once when the transport stops, whatever the cause.
	OnClose func()
}

// Transport is a message-oriented full-duplex text connection. Send is
// fire-and-forget apart from the returned write error; the engine treats
// any error as terminal for the session.
type Transport interface {
	// Start begins delivering callbacks. Called once, after the engine
	// has taken ownership of the transport.
	Start()

	// Send writes one text frame.
	Send(text string) error

	// Close tears the connection down. Idempotent.
	Close() error
}

// Dialer opens a Transport to the given address. The returned transport
// must not deliver callbacks until Start is called.
type Dialer func(ctx context.Context, address string, ev TransportEvents) (Transport, error)

// WebSocketDialer returns a Dialer backed by a WebSocket connection
// carrying one JSON event per text message.
func WebSocketDialer(limits protocol.Limits, writeTimeout time.Duration) Dialer {
	return func(ctx context.Context, address string, ev TransportEvents) (Transport, error) {
		u := url.URL{Scheme: "ws", Host: address, Path: "/ws"}
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", u.String(), err)
		}
		conn.SetReadLimit(limits.MaxFrameSize)
		return &wsTransport{
			conn:         conn,
			ev:           ev,
			writeTimeout: writeTimeout,
		}, nil
	}
}

// wsTransport adapts a gorilla websocket connection to the Transport
// contract.
type wsTransport struct {
	conn         *websocket.Conn
	ev           TransportEvents
	writeTimeout time.Duration
	closed       atomic.Bool
}

// Start launches the read loop. OnOpen is delivered first, from the same
// goroutine that will deliver every subsequent callback.
func (t *wsTransport) Start() {
	go t.readLoop()
}

func (t *wsTransport) readLoop() {
	if t.ev.OnOpen != nil {
		t.ev.OnOpen()
	}

	for {
		kind, msg, err := t.conn.ReadMessage()
		if err != nil {
			if !t.closed.Load() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				if t.ev.OnError != nil {
					t.ev.OnError(err)
				}
			}
			if t.ev.OnClose != nil {
				t.ev.OnClose()
			}
			return
		}
		if kind != websocket.TextMessage {
			if t.ev.OnError != nil {
				t.ev.OnError(fmt.Errorf("transport: unexpected binary frame"))
			}
			if t.ev.OnClose != nil {
				t.ev.OnClose()
			}
			return
		}
		if t.ev.OnMessage != nil {
			t.ev.OnMessage(string(msg))
		}
	}
}

// Send writes one text frame with the configured write deadline.
func (t *wsTransport) Send(text string) error {
	t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout))
	return t.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Close closes the connection. Idempotent; the read loop observes the
// closure and fires OnClose.
func (t *wsTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	return t.conn.Close()
}
