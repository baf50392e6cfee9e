package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// DataDir is where the message archive lives.
	DataDir string `json:"dataDir"`
	// SegmentSize splits event files into a buffer chain of this many bytes
	// per segment, mimicking the transport's framing.
	SegmentSize int `json:"segmentSize"`
	// MaxEventBytes rejects event files larger than this.
	MaxEventBytes int `json:"maxEventBytes"`
	// MaxDecompressedBytes caps the decompressed application data of one
	// message; 0 means unbounded.
	MaxDecompressedBytes int `json:"maxDecompressedBytes"`
	// LogLevel is debug|info|warn|error.
	LogLevel string `json:"logLevel"`
	// LogFormat is text|json.
	LogFormat string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir:              "",
		SegmentSize:          4096,
		MaxEventBytes:        64 << 20,
		MaxDecompressedBytes: 16 << 20,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects nonsensical settings.
func (c Config) Validate() error {
	if c.SegmentSize < 1 {
		return fmt.Errorf("config: segmentSize %d must be positive", c.SegmentSize)
	}
	if c.MaxEventBytes < 1 {
		return fmt.Errorf("config: maxEventBytes %d must be positive", c.MaxEventBytes)
	}
	if c.MaxDecompressedBytes < 0 {
		return fmt.Errorf("config: maxDecompressedBytes %d must not be negative", c.MaxDecompressedBytes)
	}
	return nil
}
