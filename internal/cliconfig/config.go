package cliconfig

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bft-labs/postsync/internal/domain"
)

// DefaultBaseURL is the collection the CLI talks to unless configured otherwise.
const DefaultBaseURL = domain.DefaultBaseURL

// Output formats understood by the CLI.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// Config holds CLI configuration for postsync.
type Config struct {
	BaseURL     string
	HTTPTimeout time.Duration

	LogLevel string
	Output   string

	// ReportUpdateDecodeErrors surfaces undecodable update responses in the
	// error slot instead of only logging them.
	ReportUpdateDecodeErrors bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		HTTPTimeout: 15 * time.Second,
		LogLevel:    "info",
		Output:      OutputTable,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	// Ensure no trailing slash
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: base-url: %v", domain.ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base-url %q must be an absolute http(s) URL", domain.ErrInvalidConfig, c.BaseURL)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", domain.ErrInvalidConfig)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	switch c.Output {
	case "":
		c.Output = OutputTable
	case OutputTable, OutputJSON:
	default:
		return fmt.Errorf("%w: output must be %q or %q", domain.ErrInvalidConfig, OutputTable, OutputJSON)
	}

	return nil
}

// configSetter writes a value from a lower-precedence source (file, env)
// unless the matching flag was passed on the command line.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// skip reports whether flag was set explicitly or the source had no value.
func (s *configSetter) skip(flag string, empty bool) bool {
	return empty || s.changed[flag]
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if !s.skip(flag, value == "") {
		*dst = value
	}
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if s.skip(flag, value == "") {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidConfig, flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if !s.skip(flag, value == nil) {
		*dst = *value
	}
}

// setBoolFromString treats "1", "true" and "yes" (any case) as true and
// everything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if s.skip(flag, value == "") {
		return
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		*dst = true
	default:
		*dst = false
	}
}
