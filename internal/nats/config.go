// Package nats publishes gallery events (population progress, rendered
// frames and alerts) to a NATS JetStream stream.
package nats

import (
	"time"
)

// Config holds NATS connection and stream configuration.
type Config struct {
	// Enabled turns the event sink on. The gallery runs without NATS when false.
	Enabled bool `env:"NATS_ENABLED" envDefault:"false"`

	// URL is the NATS server URL (e.g., "nats://localhost:4222")
	URL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	// Name is the client connection name for monitoring
	Name string `env:"NATS_CLIENT_NAME" envDefault:"artwall-server"`

	// MaxReconnects is the maximum number of reconnection attempts
	MaxReconnects int `env:"NATS_MAX_RECONNECTS" envDefault:"60"`

	// ReconnectWait is the time to wait between reconnection attempts
	ReconnectWait time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`

	// Timeout is the connection timeout
	Timeout time.Duration `env:"NATS_TIMEOUT" envDefault:"5s"`

	// SubjectPrefix is the first token of every published subject
	SubjectPrefix string `env:"NATS_SUBJECT_PREFIX" envDefault:"gallery"`

	// StallWait bounds how long a publish may wait when too many acks are
	// outstanding. Publishing happens on the rotation loop, so keep it short.
	StallWait time.Duration `env:"NATS_STALL_WAIT" envDefault:"50ms"`

	// Stream configuration
	Stream StreamConfig `envPrefix:"NATS_STREAM_"`
}

// StreamConfig holds JetStream stream configuration.
type StreamConfig struct {
	// Name is the stream name
	Name string `env:"NAME" envDefault:"GALLERY_EVENTS"`

	// Subjects are the subjects to capture
	Subjects []string `env:"SUBJECTS" envDefault:"gallery.>"`

	// MaxAge is the maximum age of messages in the stream
	MaxAge time.Duration `env:"MAX_AGE" envDefault:"24h"`

	// MaxBytes is the maximum size of the stream in bytes
	MaxBytes int64 `env:"MAX_BYTES" envDefault:"268435456"` // 256MB

	// Replicas is the number of replicas for the stream
	Replicas int `env:"REPLICAS" envDefault:"1"`

	// Storage is the storage type (file or memory)
	Storage string `env:"STORAGE" envDefault:"memory"`
}
