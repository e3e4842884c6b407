package gallery

import (
	"fmt"
	"time"
)

// Config holds the gallery configuration.
//
// Environment variable overrides:
//   - GALLERY_SLOTS:          number of display slots (default: 20)
//   - GALLERY_MIN_POPULATION: distinct results a search needs (default: 21)
//   - GALLERY_TICK_INTERVAL:  time between rotations (default: 2s)
//   - GALLERY_COMMAND_BUFFER: scheduler command queue size (default: 16)
//   - GALLERY_DEFAULT_MEDIA:  media type when a search names none (default: music)
//   - GALLERY_SEED:           random seed, 0 for a random one (default: 0)
type Config struct {
	Slots         int           `env:"GALLERY_SLOTS"          envDefault:"20"`
	MinPopulation int           `env:"GALLERY_MIN_POPULATION" envDefault:"21"`
	TickInterval  time.Duration `env:"GALLERY_TICK_INTERVAL"  envDefault:"2s"`
	CommandBuffer int           `env:"GALLERY_COMMAND_BUFFER" envDefault:"16"`
	DefaultMedia  string        `env:"GALLERY_DEFAULT_MEDIA"  envDefault:"music"`
	Seed          uint64        `env:"GALLERY_SEED"           envDefault:"0"`
}

// DefaultConfig returns a 20 slot gallery that needs 21 distinct results and
// rotates every 2 seconds.
func DefaultConfig() Config {
	return Config{
		Slots:         20,
		MinPopulation: 21,
		TickInterval:  2 * time.Second,
		CommandBuffer: 16,
		DefaultMedia:  "music",
	}
}

// Validate checks the configuration. A population must fill every slot and
// leave at least one candidate on the bench.
func (c Config) Validate() error {
	if c.Slots <= 0 {
		return fmt.Errorf("%w: slots must be positive, got %d", ErrInvalidConfig, c.Slots)
	}
	if c.MinPopulation <= c.Slots {
		return fmt.Errorf("%w: minimum population %d must exceed slot count %d",
			ErrInvalidConfig, c.MinPopulation, c.Slots)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfig, c.TickInterval)
	}
	if c.CommandBuffer < 0 {
		return fmt.Errorf("%w: command buffer must not be negative, got %d", ErrInvalidConfig, c.CommandBuffer)
	}
	return nil
}
