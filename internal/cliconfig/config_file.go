package cliconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the on-disk shape of ~/.postsync/config.toml. Durations are
// strings ("15s") and the bool is a pointer so an absent key leaves the
// current value alone.
//
//	base_url = "http://localhost:8080/posts"
//	http_timeout = "5s"
//	log_level = "debug"
//	output = "json"
//	report_update_decode_errors = true
type FileConfig struct {
	BaseURL                  string `toml:"base_url"`
	HTTPTimeout              string `toml:"http_timeout"`
	LogLevel                 string `toml:"log_level"`
	Output                   string `toml:"output"`
	ReportUpdateDecodeErrors *bool  `toml:"report_update_decode_errors"`
}

// LoadFileConfig decodes the TOML file at path. Unknown keys are rejected so
// typos surface instead of being silently ignored.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	dec := toml.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath is ~/.postsync/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".postsync", "config.toml")
}

// ApplyFileConfig copies the keys present in fc onto cfg, skipping any
// setting whose flag was passed explicitly.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)
	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("output", fc.Output, &cfg.Output)
	s.setBool("report-update-decode-errors", fc.ReportUpdateDecodeErrors, &cfg.ReportUpdateDecodeErrors)
	return s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout)
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
