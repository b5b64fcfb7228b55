package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for a hunt.
type Config struct {
	RequestTimeout time.Duration // per-request budget inside a platform session
	SearchTimeout  time.Duration // hard per-platform deadline for the search phase

	CommitAttempts      int
	CommitBackoff       time.Duration
	CommitBackoffFactor float64
	CommitBackoffMax    time.Duration
	AvailabilityFirst   bool
	SkipCommit          bool

	MinRating             float64
	MaxResultsPerPlatform int

	CacheTTL   time.Duration
	CacheSize  int
	DedupeSize int

	UserAgent string

	OutputFile  string // report JSON path, empty for stdout only
	HistoryPath string // sqlite history path, empty disables history
	MetricsAddr string // prometheus listen address, empty disables the listener
	LogFile     string
	Verbose     bool
}

// DefaultConfig returns the defaults for the supported delivery platforms.
func DefaultConfig() *Config {
	return &Config{
		RequestTimeout:        15 * time.Second,
		SearchTimeout:         30 * time.Second,
		CommitAttempts:        3,
		CommitBackoff:         time.Second,
		CommitBackoffFactor:   2.0,
		CommitBackoffMax:      30 * time.Second,
		MinRating:             3.8,
		MaxResultsPerPlatform: 5,
		CacheTTL:              30 * time.Second,
		CacheSize:             128,
		DedupeSize:            512,
		UserAgent:             "Mozilla/5.0 (compatible; dealhound/1.0)",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("search timeout must be positive")
	}
	if c.CommitAttempts <= 0 {
		return fmt.Errorf("commit attempts must be positive")
	}
	if c.CommitBackoff <= 0 {
		return fmt.Errorf("commit backoff must be positive")
	}
	if c.CommitBackoffFactor < 1 {
		return fmt.Errorf("commit backoff factor must be at least 1")
	}
	if c.CommitBackoffMax > 0 && c.CommitBackoff > c.CommitBackoffMax {
		return fmt.Errorf("commit backoff (%s) cannot exceed commit backoff max (%s)", c.CommitBackoff, c.CommitBackoffMax)
	}
	if c.MinRating < 0 || c.MinRating > 5 {
		return fmt.Errorf("min rating must be between 0 and 5")
	}
	if c.MaxResultsPerPlatform <= 0 {
		return fmt.Errorf("max results per platform must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive")
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive")
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("dedupe size must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}
