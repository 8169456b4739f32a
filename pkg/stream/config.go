package stream

import "time"

// Config tunes the WebSocket endpoint. The zero value is usable; unset
// fields fall back to the envDefault values below.
type Config struct {
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration `env:"STREAM_WRITE_TIMEOUT" envDefault:"10s"`

	// PingInterval is how often the server pings an idle connection.
	// It must be shorter than PongTimeout.
	PingInterval time.Duration `env:"STREAM_PING_INTERVAL" envDefault:"30s"`

	// PongTimeout is how long the server waits for a pong before it
	// considers the connection dead.
	PongTimeout time.Duration `env:"STREAM_PONG_TIMEOUT" envDefault:"60s"`

	// ReadLimit caps inbound frame size. Clients only send control
	// frames, so the limit is small.
	ReadLimit int64 `env:"STREAM_READ_LIMIT" envDefault:"512"`
}

func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.PongTimeout <= 0 {
		c.PongTimeout = 60 * time.Second
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 512
	}
	return c
}
