package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Server is the HTTP/WebSocket chat server.
type Server struct {
	cfg      *Config
	room     *room
	upgrader websocket.Upgrader
	tracer   trace.Tracer

	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server with the given configuration. A nil config
// uses DefaultConfig; unset fields are filled with their defaults.
func New(cfg *Config) *Server {
	cfg = cfg.withDefaults()

	return &Server{
		cfg:  cfg,
		room: newRoom(cfg.HistoryLimit),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		tracer: otel.Tracer("parley-server"),
		logger: slog.Default().With("component", "server"),
	}
}

// Handler returns the server's http.Handler: the WebSocket endpoint plus
// health and metrics routes. This is the integration point for mounting
// under an external router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.HandleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// HandleWebSocket upgrades the request and starts a session. The client
// is expected to send a join event as its first frame.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.cfg.Limits.MaxFrameSize)

	sess := newSession(s, conn)
	sess.Start()
}

// Run starts the server and blocks until SIGINT/SIGTERM or a listen
// error.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go s.sweepAttachments(ctx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.cfg.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// SetLogger sets the server logger.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *Server) metrics() *Metrics {
	return s.cfg.Metrics
}

// sweepAttachments expires stored attachments in the background.
func (s *Server) sweepAttachments(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.AttachmentTTL / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.cfg.Store.Cleanup(ctx, s.cfg.AttachmentTTL); err != nil {
				s.logger.Error("attachment cleanup failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
