// Package feed implements the network side of feed ingestion: downloading
// feed bodies, decoding them with gofeed and discovering feeds on HTML pages.
package feed

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"my-ankode/internal/resilience/circuitbreaker"
	"my-ankode/internal/resilience/retry"
)

// DefaultUserAgent identifies the crawler to feed publishers.
const DefaultUserAgent = "MyAnkodeBot/1.0 (+veille)"

// Config controls outbound feed requests.
type Config struct {
	// Timeout bounds one HTTP request, retries excluded
	Timeout time.Duration
	// UserAgent is sent with every request
	UserAgent string
	// MaxBodySize rejects responses larger than this many bytes
	MaxBodySize int64
	// MaxRedirects bounds redirect chains
	MaxRedirects int

	Retry   retry.Config
	Breaker circuitbreaker.Config
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  5 * 1024 * 1024,
		MaxRedirects: 5,
		Retry:        retry.FeedFetchConfig(),
		Breaker:      circuitbreaker.FeedFetchConfig(),
	}
}

// Validate checks if the configuration values are usable.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}
	const minBody, maxBody = int64(1024), int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv overlays FEED_FETCH_TIMEOUT, FEED_USER_AGENT and
// FEED_MAX_BODY_BYTES on the defaults and validates the result.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if val := os.Getenv("FEED_FETCH_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_FETCH_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = d
	}
	if val := os.Getenv("FEED_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}
	if val := os.Getenv("FEED_MAX_BODY_BYTES"); val != "" {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid FEED_MAX_BODY_BYTES: %v", err)
		}
		cfg.MaxBodySize = n
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
