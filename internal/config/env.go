package config

import (
	"os"
	"strconv"
)

// FromEnv overlays BMQ_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BMQ_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BMQ_SEGMENT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SegmentSize = n
		}
	}
	if v := os.Getenv("BMQ_MAX_EVENT_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxEventBytes = n
		}
	}
	if v := os.Getenv("BMQ_MAX_DECOMPRESSED_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxDecompressedBytes = n
		}
	}
	if v := os.Getenv("BMQ_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BMQ_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
