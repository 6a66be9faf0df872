package cliconfig

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/nasermirzaei89/env"
)

// DotEnvFile is the dotenv file looked up in the working directory.
const DotEnvFile = ".env"

// LoadDotEnv loads variables from a dotenv file into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" || !FileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (POSTSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("base-url", env.GetString("POSTSYNC_BASE_URL", ""), &cfg.BaseURL)
	s.setString("log-level", env.GetString("POSTSYNC_LOG_LEVEL", ""), &cfg.LogLevel)
	s.setString("output", env.GetString("POSTSYNC_OUTPUT", ""), &cfg.Output)

	if err := s.setDuration("timeout", env.GetString("POSTSYNC_HTTP_TIMEOUT", ""), &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setBoolFromString("report-update-decode-errors", env.GetString("POSTSYNC_REPORT_UPDATE_DECODE_ERRORS", ""), &cfg.ReportUpdateDecodeErrors)

	return nil
}

// Load layers configuration sources onto cfg: the TOML file at path (when it
// exists), then the dotenv file, then POSTSYNC_* variables. Flags recorded in
// changed are never overridden.
func Load(cfg *Config, path string, changed map[string]bool) error {
	if path != "" && FileExists(path) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := LoadDotEnv(DotEnvFile); err != nil {
		return err
	}

	return ApplyEnvConfig(cfg, changed)
}
