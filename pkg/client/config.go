package client

import (
	"log/slog"
	"time"

	"github.com/parley-chat/parley/pkg/protocol"
)

// Config holds configuration for a Client.
type Config struct {
	// Limits are the protocol size bounds (nickname, text, attachment
	// ceiling, affordance window). Zero value means DefaultLimits.
	Limits protocol.Limits

	// DialTimeout is the maximum time to establish the transport.
	// Default: 10 seconds.
	DialTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// Logger receives structured engine logs. Default: slog.Default().
	Logger *slog.Logger

	// Metrics collects engine metrics. Nil disables collection.
	Metrics *Metrics
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Limits:       protocol.DefaultLimits(),
		DialTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// withDefaults fills unset fields.
func (c *Config) withDefaults() *Config {
	out := *c
	if out.Limits == (protocol.Limits{}) {
		out.Limits = protocol.DefaultLimits()
	}
	if out.DialTimeout <= 0 {
		out.DialTimeout = 10 * time.Second
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = 10 * time.Second
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}
