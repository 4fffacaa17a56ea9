package tcp

import "time"

const (
	DefaultMaxFrameBytes     = 64 << 10
	DefaultOutboundQueueSize = 256
	DefaultWriteTimeout      = 10 * time.Second
)

// Config tunes the TCP front of the relay.
type Config struct {
	Address           string
	MaxFrameBytes     int
	OutboundQueueSize int
	WriteTimeout      time.Duration
	MaxUsernameLength int // in runes, 0 means unlimited
}

// withDefaults fills every unset field.
func (c Config) withDefaults() Config {
	if c.MaxFrameBytes <= 0 {
		c.MaxFrameBytes = DefaultMaxFrameBytes
	}
	if c.OutboundQueueSize <= 0 {
		c.OutboundQueueSize = DefaultOutboundQueueSize
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	return c
}
