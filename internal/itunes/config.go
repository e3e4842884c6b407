package itunes

import "time"

// DefaultBaseURL is the iTunes Search API endpoint.
const DefaultBaseURL = "https://itunes.apple.com/search"

// Config holds the iTunes search client configuration. Environment variables
// are read with the ITUNES_ prefix.
type Config struct {
	BaseURL           string        `env:"BASE_URL"            envDefault:"https://itunes.apple.com/search"`
	ResultLimit       int           `env:"RESULT_LIMIT"        envDefault:"200"`
	Timeout           time.Duration `env:"TIMEOUT"             envDefault:"10s"`
	RequestsPerMinute int           `env:"REQUESTS_PER_MINUTE" envDefault:"20"`
	Burst             int           `env:"BURST"               envDefault:"5"`
	MaxRetries        int           `env:"MAX_RETRIES"         envDefault:"3"`
	RetryBaseDelay    time.Duration `env:"RETRY_BASE_DELAY"    envDefault:"500ms"`
	RetryMaxDelay     time.Duration `env:"RETRY_MAX_DELAY"     envDefault:"5s"`
	UserAgent         string        `env:"USER_AGENT"          envDefault:"artwall/1.0"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		ResultLimit:       200,
		Timeout:           10 * time.Second,
		RequestsPerMinute: 20,
		Burst:             5,
		MaxRetries:        3,
		RetryBaseDelay:    500 * time.Millisecond,
		RetryMaxDelay:     5 * time.Second,
		UserAgent:         "artwall/1.0",
	}
}
