package server

import (
	"net/http"
	"time"

	"github.com/parley-chat/parley/pkg/attach"
	"github.com/parley-chat/parley/pkg/protocol"
)

// Config holds the server configuration.
type Config struct {
	// Address is the listen address. Default: ":8080".
	Address string

	// Limits are the protocol size bounds enforced on clients. Zero
	// value means protocol.DefaultLimits.
	Limits protocol.Limits

	// HistoryLimit is how many messages the room retains for replay to
	// joining clients. Default: 256.
	HistoryLimit int

	// Store holds uploaded attachments. Default: an in-memory store
	// bounded by Limits.AttachmentMax.
	Store attach.Store

	// AttachmentTTL is how long attachments stay fetchable. Expired
	// attachments are swept in the background. Default: 1 hour.
	AttachmentTTL time.Duration

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	// Default: 4096.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header during upgrade. Default:
	// allow all, which suits a terminal client that sends no Origin.
	CheckOrigin func(r *http.Request) bool

	// PongTimeout is how long a client may go silent before its
	// connection is dropped. Default: 60 seconds.
	PongTimeout time.Duration

	// PingInterval is how often the server pings each client. Must be
	// shorter than PongTimeout. Default: 30 seconds.
	PingInterval time.Duration

	// WriteTimeout bounds a single frame write. Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 15 seconds.
	ShutdownTimeout time.Duration

	// Metrics collects server metrics. Nil disables collection.
	Metrics *Metrics
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8080",
		Limits:          protocol.DefaultLimits(),
		HistoryLimit:    256,
		AttachmentTTL:   time.Hour,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
		PongTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

func (c *Config) withDefaults() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	defaults := DefaultConfig()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Limits == (protocol.Limits{}) {
		out.Limits = defaults.Limits
	}
	if out.HistoryLimit == 0 {
		out.HistoryLimit = defaults.HistoryLimit
	}
	if out.Store == nil {
		out.Store = attach.NewMemoryStore(out.Limits.AttachmentMax)
	}
	if out.AttachmentTTL == 0 {
		out.AttachmentTTL = defaults.AttachmentTTL
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = defaults.CheckOrigin
	}
	if out.PongTimeout == 0 {
		out.PongTimeout = defaults.PongTimeout
	}
	if out.PingInterval == 0 {
		out.PingInterval = defaults.PingInterval
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaults.WriteTimeout
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	return &out
}
