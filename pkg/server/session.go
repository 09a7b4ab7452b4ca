package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/parley-chat/parley/pkg/attach"
	"github.com/parley-chat/parley/pkg/protocol"
)

// session is one connected client. Reads happen on ReadLoop's goroutine;
// writes are serialized by mu so broadcasts from other sessions interleave
// safely with direct replies.
type session struct {
	server *Server
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed atomic.Bool
	done   chan struct{}

	// nickname is set once by the join event. Writes and cross-goroutine
	// reads hold mu; the read loop reads it freely.
	nickname string
}

func newSession(srv *Server, conn *websocket.Conn) *session {
	return &session{
		server: srv,
		conn:   conn,
		logger: srv.logger.With("remote", conn.RemoteAddr().String()),
		done:   make(chan struct{}),
	}
}

// Start starts the session loops.
func (s *session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
}

// ReadLoop continuously reads frames from the WebSocket connection,
// decodes them, and applies them to the room. It blocks until the
// connection is closed or a protocol violation ends the session.
func (s *session) ReadLoop() {
	defer s.Close()

	cfg := s.server.cfg
	s.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(cfg.PongTimeout))
		return nil
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}

		s.server.metrics().frameReceived(len(msg))

		ev, err := protocol.DecodeClient(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.server.metrics().frameRejected()
			s.fail("invalid event: " + err.Error())
			return
		}

		if !s.handleEvent(ev) {
			return
		}
	}
}

// WriteLoop pings the client until the session ends.
func (s *session) WriteLoop() {
	ticker := time.NewTicker(s.server.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// handleEvent applies one decoded event and reports whether the session
// should keep reading.
func (s *session) handleEvent(ev *protocol.ClientEvent) bool {
	ctx, span := s.server.tracer.Start(context.Background(),
		"parley."+string(ev.Type),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("chat.event_type", string(ev.Type)),
			attribute.String("chat.nickname", s.nickname),
		),
	)
	defer span.End()

	s.server.metrics().eventReceived(string(ev.Type))

	var err error
	switch ev.Type {
	case protocol.EventJoin:
		err = s.handleJoin(ev.Join)
	case protocol.EventSendMessage:
		err = s.handleSendMessage(ev.SendMessage)
	case protocol.EventEditMessage:
		err = s.handleEditMessage(ev.EditMessage)
	case protocol.EventDeleteMessage:
		err = s.handleDeleteMessage(ev.DeleteMessage)
	case protocol.EventAddAttachment:
		err = s.handleAddAttachment(ctx, ev.AddAttachment)
	case protocol.EventFetchAttachment:
		err = s.handleFetchAttachment(ctx, ev.FetchAttachment)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.fail(err.Error())
		return false
	}
	span.SetStatus(codes.Ok, "")
	return true
}

func (s *session) handleJoin(p *protocol.Join) error {
	if s.nickname != "" {
		return errors.New("already joined")
	}
	limits := s.server.cfg.Limits
	if p.Nickname == "" {
		return errors.New("nickname must not be empty")
	}
	if len(p.Nickname) > limits.NicknameMax {
		return errors.New("nickname too long")
	}

	history, err := s.server.room.join(s, p.Nickname)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.nickname = p.Nickname
	s.mu.Unlock()
	s.server.metrics().sessionJoined()

	s.send(protocol.EventWelcome, struct{}{})
	if len(history) > 0 {
		s.send(protocol.EventMessages, protocol.Messages{Messages: history})
	}

	joined := s.server.room.postSystem(p.Nickname + " joined")
	s.server.room.broadcast(protocol.EventMessage, joined)

	s.logger.Info("client joined", "nickname", p.Nickname)
	return nil
}

func (s *session) handleSendMessage(p *protocol.SendMessage) error {
	if s.nickname == "" {
		return errors.New("join first")
	}
	if len(p.Text) > s.server.cfg.Limits.TextMax {
		return errors.New("message too long")
	}

	m := s.server.room.post(s.nickname, p.Text, p.Attachment)
	s.server.room.broadcast(protocol.EventMessage, m)
	s.server.metrics().messagePosted()
	return nil
}

func (s *session) handleEditMessage(p *protocol.EditMessage) error {
	if s.nickname == "" {
		return errors.New("join first")
	}
	if len(p.Text) > s.server.cfg.Limits.TextMax {
		return errors.New("message too long")
	}

	// A miss is not a violation: the target may have raced a delete.
	updated, ok := s.server.room.edit(s.nickname, p.ID, p.Text, p.Attachment)
	if !ok {
		s.logger.Warn("edit of unknown message", "nickname", s.nickname, "id", p.ID)
		return nil
	}
	s.server.room.broadcast(protocol.EventMessageUpdated, updated)
	return nil
}

func (s *session) handleDeleteMessage(p *protocol.DeleteMessage) error {
	if s.nickname == "" {
		return errors.New("join first")
	}

	if !s.server.room.remove(s.nickname, p.ID) {
		s.logger.Warn("delete of unknown message", "nickname", s.nickname, "id", p.ID)
		return nil
	}
	s.server.room.broadcast(protocol.EventMessageDeleted, protocol.MessageDeleted{
		Sender: s.nickname,
		ID:     p.ID,
	})
	return nil
}

func (s *session) handleAddAttachment(ctx context.Context, p *protocol.AddAttachment) error {
	if s.nickname == "" {
		return errors.New("join first")
	}

	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return errors.New("attachment data is not valid base64")
	}
	if int64(len(data)) > s.server.cfg.Limits.AttachmentMax {
		return errors.New("attachment too large")
	}

	name := ""
	if p.Name != nil {
		name = *p.Name
	}
	id, err := s.server.cfg.Store.Save(ctx, name, data)
	if err != nil {
		if errors.Is(err, attach.ErrTooLarge) {
			return errors.New("attachment too large")
		}
		s.logger.Error("attachment save failed", "error", err)
		return errors.New("attachment storage failed")
	}

	s.server.metrics().attachmentStored(len(data))
	s.send(protocol.EventAttachmentAdded, protocol.AttachmentAdded{ID: id})
	return nil
}

func (s *session) handleFetchAttachment(ctx context.Context, p *protocol.FetchAttachment) error {
	if s.nickname == "" {
		return errors.New("join first")
	}

	a, err := s.server.cfg.Store.Fetch(ctx, p.ID)
	if err != nil {
		if errors.Is(err, attach.ErrNotFound) || errors.Is(err, attach.ErrExpired) {
			// Expired content answers with the name omitted and no data;
			// the client reports the attachment as gone.
			s.send(protocol.EventAttachmentFetched, protocol.AttachmentFetched{})
			return nil
		}
		s.logger.Error("attachment fetch failed", "id", p.ID, "error", err)
		return errors.New("attachment storage failed")
	}

	encoded := base64.StdEncoding.EncodeToString(a.Data)
	fetched := protocol.AttachmentFetched{Data: &encoded}
	if a.Name != "" {
		fetched.Name = &a.Name
	}
	s.send(protocol.EventAttachmentFetched, fetched)
	return nil
}

// send encodes and writes one event frame. Write failures close the
// session.
func (s *session) send(t protocol.EventType, payload any) {
	frame, err := protocol.Encode(t, payload)
	if err != nil {
		s.logger.Error("encode error", "type", t, "error", err)
		return
	}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.WriteTimeout))
	werr := s.conn.WriteMessage(websocket.TextMessage, frame)
	s.mu.Unlock()

	if werr != nil {
		s.logger.Error("write error", "type", t, "error", werr)
		s.Close()
		return
	}
	s.server.metrics().frameSent(len(frame))
}

// fail sends a terminal error event and closes the connection.
func (s *session) fail(message string) {
	s.send(protocol.EventError, protocol.ServerError{Message: message})
	s.Close()
}

func (s *session) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return errors.New("session closed")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.server.cfg.WriteTimeout))
	return s.conn.WriteMessage(websocket.PingMessage, nil)
}

// Close tears the session down: deregisters from the room, announces the
// departure, and closes the connection. Idempotent.
func (s *session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	s.conn.Close()

	s.mu.Lock()
	nickname := s.nickname
	s.mu.Unlock()

	s.server.room.leave(s, nickname)
	if nickname != "" {
		s.server.metrics().sessionLeft()
		left := s.server.room.postSystem(nickname + " left")
		s.server.room.broadcast(protocol.EventMessage, left)
		s.logger.Info("client left", "nickname", nickname)
	}
}
