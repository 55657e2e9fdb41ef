package models

import (
	"fmt"
	"time"
)

// Config holds all configuration options for siteintel
type Config struct {
	FetchDeadline     time.Duration
	HTTPTimeout       time.Duration
	NavigationTimeout time.Duration
	RenderWait        time.Duration
	MinTextLength     int
	SecurityTimeout   time.Duration
	BulkDelay         time.Duration
	MaxBulkURLs       int
	UserAgent         string
	ScannerUserAgent  string
	VerifyTLS         bool
	MaxRedirects      int
	ListenAddr        string
	LogLevel          string
	LogFormat         string
	OutputDir         string
	OutputFormat      string
	Quiet             bool
	NoColor           bool
	NoProgress        bool
}

// Validate checks if the configuration is valid and returns an error if not
func (c *Config) Validate() error {
	if c.FetchDeadline < 1*time.Second {
		return fmt.Errorf("fetch deadline must be at least 1 second, got %v", c.FetchDeadline)
	}
	if c.HTTPTimeout <= 0 || c.HTTPTimeout > c.FetchDeadline {
		return fmt.Errorf("http timeout must be positive and within the fetch deadline, got %v", c.HTTPTimeout)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive, got %v", c.NavigationTimeout)
	}
	if c.RenderWait < 0 {
		return fmt.Errorf("render wait cannot be negative, got %v", c.RenderWait)
	}
	if c.MinTextLength < 0 {
		return fmt.Errorf("min text length cannot be negative, got %d", c.MinTextLength)
	}
	if c.SecurityTimeout < 1*time.Second {
		return fmt.Errorf("security timeout must be at least 1 second, got %v", c.SecurityTimeout)
	}
	if c.BulkDelay < 0 {
		return fmt.Errorf("bulk delay cannot be negative, got %v", c.BulkDelay)
	}
	if c.MaxBulkURLs < 1 {
		return fmt.Errorf("max bulk urls must be at least 1, got %d", c.MaxBulkURLs)
	}
	if c.MaxBulkURLs > 100 {
		return fmt.Errorf("max bulk urls cannot exceed 100, got %d", c.MaxBulkURLs)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// Clone creates a copy of the config to avoid race conditions
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		FetchDeadline:     45 * time.Second,
		HTTPTimeout:       8 * time.Second,
		NavigationTimeout: 25 * time.Second,
		RenderWait:        2 * time.Second,
		MinTextLength:     1000,
		SecurityTimeout:   10 * time.Second,
		BulkDelay:         1 * time.Second,
		MaxBulkURLs:       20,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ScannerUserAgent:  "Mozilla/5.0 (compatible; SiteIntel-SecurityScanner/1.0; +https://github.com/Sla0ui/siteintel)",
		VerifyTLS:         true,
		MaxRedirects:      10,
		ListenAddr:        ":8080",
		LogLevel:          "info",
		LogFormat:         "console",
		OutputDir:         "results",
		OutputFormat:      "json,csv",
		Quiet:             false,
		NoColor:           false,
		NoProgress:        false,
	}
}
