// Package config loads TOML configuration for the deli tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/des256/deli-sub001/com"
)

// Config is the resolved tool configuration.
type Config struct {
	ListenAddr     string
	ServerAddr     string
	MaxMessageSize uint32
	RecvBuffer     int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	FrameInterval  time.Duration
	LogLevel       string
}

type fileConfig struct {
	Listen         string `toml:"listen"`
	Server         string `toml:"server"`
	MaxMessageSize int64  `toml:"max_message_size"`
	RecvBuffer     int    `toml:"recv_buffer"`
	ReadTimeout    string `toml:"read_timeout"`
	WriteTimeout   string `toml:"write_timeout"`
	FrameInterval  string `toml:"frame_interval"`
	LogLevel       string `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7411",
		ServerAddr:     "127.0.0.1:7411",
		MaxMessageSize: com.DefaultMaxMessageSize,
		RecvBuffer:     256,
		WriteTimeout:   10 * time.Second,
		FrameInterval:  40 * time.Millisecond,
		LogLevel:       "info",
	}
}

// Load reads path and overlays it on the defaults. Absent keys keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen") {
		if addr := strings.TrimSpace(raw.Listen); addr != "" {
			cfg.ListenAddr = addr
		}
	}
	if meta.IsDefined("server") {
		if addr := strings.TrimSpace(raw.Server); addr != "" {
			cfg.ServerAddr = addr
		}
	}
	if meta.IsDefined("max_message_size") {
		if raw.MaxMessageSize <= 0 || raw.MaxMessageSize > int64(^uint32(0)) {
			return Config{}, fmt.Errorf("config: max_message_size out of range: %d", raw.MaxMessageSize)
		}
		cfg.MaxMessageSize = uint32(raw.MaxMessageSize)
	}
	if meta.IsDefined("recv_buffer") {
		if raw.RecvBuffer <= 0 {
			return Config{}, fmt.Errorf("config: recv_buffer must be positive: %d", raw.RecvBuffer)
		}
		cfg.RecvBuffer = raw.RecvBuffer
	}
	if meta.IsDefined("read_timeout") {
		if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("write_timeout") {
		if cfg.WriteTimeout, err = parseDuration("write_timeout", raw.WriteTimeout); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("frame_interval") {
		if cfg.FrameInterval, err = parseDuration("frame_interval", raw.FrameInterval); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	return cfg, nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: %s must not be negative", key)
	}
	return d, nil
}

// Options converts the configuration into com options.
func (c Config) Options() []com.Option {
	return []com.Option{
		com.WithMaxMessageSize(c.MaxMessageSize),
		com.WithRecvBuffer(c.RecvBuffer),
		com.WithReadTimeout(c.ReadTimeout),
		com.WithWriteTimeout(c.WriteTimeout),
	}
}
