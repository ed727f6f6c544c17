// Package config loads the client configuration. Flags override the config
// file; fields omitted from the JSON keep their defaults, so partial configs
// are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Race stages as the SCR server numbers them.
const (
	StageWarmup     = 0
	StageQualifying = 1
	StageRace       = 2
	StageUnknown    = 3
)

// ClientConfig is the configuration surface of the driver client. All fields
// are optional; the Get* accessors provide the protocol defaults.
type ClientConfig struct {
	Host     *string `json:"host,omitempty"`
	Port     *int    `json:"port,omitempty"`
	SID      *string `json:"sid,omitempty"`
	Stage    *int    `json:"stage,omitempty"`
	Track    *string `json:"track,omitempty"`
	Debug    *bool   `json:"debug,omitempty"`
	MaxSteps *int    `json:"max_steps,omitempty"`
	Episodes *int    `json:"episodes,omitempty"`
	Listen   *string `json:"listen,omitempty"`
	Journal  *string `json:"journal,omitempty"`
}

// EmptyClientConfig returns a ClientConfig with all fields unset.
func EmptyClientConfig() *ClientConfig {
	return &ClientConfig{}
}

// LoadClientConfig loads a ClientConfig from a JSON file. The file must have
// a .json extension and stay under the max file size.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyClientConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields that have hard ranges.
func (c *ClientConfig) Validate() error {
	if c.Port != nil && (*c.Port < 1 || *c.Port > 65535) {
		return fmt.Errorf("port must be in 1..65535, got %d", *c.Port)
	}
	if c.Stage != nil && (*c.Stage < StageWarmup || *c.Stage > StageUnknown) {
		return fmt.Errorf("stage must be in 0..3, got %d", *c.Stage)
	}
	if c.MaxSteps != nil && *c.MaxSteps < 1 {
		return fmt.Errorf("max_steps must be positive, got %d", *c.MaxSteps)
	}
	if c.Episodes != nil && *c.Episodes < 1 {
		return fmt.Errorf("episodes must be positive, got %d", *c.Episodes)
	}
	return nil
}

// GetHost returns the simulator host or the default.
func (c *ClientConfig) GetHost() string {
	if c.Host == nil {
		return "localhost"
	}
	return *c.Host
}

// GetPort returns the simulator port or the default.
func (c *ClientConfig) GetPort() int {
	if c.Port == nil {
		return 3001
	}
	return *c.Port
}

// GetSID returns the session identifier or the default.
func (c *ClientConfig) GetSID() string {
	if c.SID == nil {
		return "SCR"
	}
	return *c.SID
}

// GetStage returns the race stage or StageUnknown.
func (c *ClientConfig) GetStage() int {
	if c.Stage == nil {
		return StageUnknown
	}
	return *c.Stage
}

// GetTrack returns the client's name for the track, "unknown" by default.
func (c *ClientConfig) GetTrack() string {
	if c.Track == nil {
		return "unknown"
	}
	return *c.Track
}

// GetDebug reports whether full telemetry output is wanted.
func (c *ClientConfig) GetDebug() bool {
	return c.Debug != nil && *c.Debug
}

// GetMaxSteps returns the driver loop bound. One second of race time is
// roughly 50 steps.
func (c *ClientConfig) GetMaxSteps() int {
	if c.MaxSteps == nil {
		return 100000
	}
	return *c.MaxSteps
}

// GetEpisodes returns how many sessions to run back to back.
func (c *ClientConfig) GetEpisodes() int {
	if c.Episodes == nil {
		return 1
	}
	return *c.Episodes
}

// GetListen returns the diagnostics listen address; empty disables the
// HTTP server.
func (c *ClientConfig) GetListen() string {
	if c.Listen == nil {
		return ""
	}
	return *c.Listen
}

// GetJournal returns the sqlite journal path; empty disables journaling.
func (c *ClientConfig) GetJournal() string {
	if c.Journal == nil {
		return ""
	}
	return *c.Journal
}
