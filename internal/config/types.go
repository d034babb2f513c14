package config

import "strings"

// Config is the top-level configuration for finboard.
type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Oanda    OandaConfig    `toml:"oanda"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type DatabaseConfig struct {
	Path        string `toml:"path"`
	SessionPath string `toml:"session_path"`
}

type SessionConfig struct {
	TTLHours int `toml:"ttl_hours"`
}

// OandaConfig holds broker request defaults. Credentials are per-user and live
// in the database, not here.
type OandaConfig struct {
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	DefaultInstrument  string `toml:"default_instrument"`
	DefaultGranularity string `toml:"default_granularity"`
	DefaultCandleCount int    `toml:"default_candle_count"`
	WatchlistPath      string `toml:"watchlist_path"`
}

// keySet tracks which config paths were explicitly set in the files, so
// defaults never clobber an explicit zero value.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes the default rule for a single field.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
