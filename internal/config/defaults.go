package config

import "strings"

const (
	defaultAppEnv             = "dev"
	defaultAppLogLevel        = "info"
	defaultAppHTTPAddr        = ":8991"
	defaultAppLogPath         = ""
	defaultDatabasePath       = "data/finboard.db"
	defaultSessionDBPath      = "data/sessions.db"
	defaultSessionTTLHours    = 72
	defaultOandaTimeout       = 15
	defaultOandaInstrument    = "EUR_USD"
	defaultOandaGranularity   = "H1"
	defaultOandaCandleCount   = 200
	defaultOandaWatchlistPath = ""
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Database.applyDefaults(keys)
	c.Session.applyDefaults(keys)
	c.Oanda.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (d *DatabaseConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("database.path", &d.Path, defaultDatabasePath),
		stringFieldDefault("database.session_path", &d.SessionPath, defaultSessionDBPath),
	)
}

func (s *SessionConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("session.ttl_hours", &s.TTLHours, defaultSessionTTLHours),
	)
}

func (o *OandaConfig) applyDefaults(keys keySet) {
	if o == nil {
		return
	}
	applyFieldDefaults(keys,
		intFieldDefault("oanda.timeout_seconds", &o.TimeoutSeconds, defaultOandaTimeout),
		stringFieldDefault("oanda.default_instrument", &o.DefaultInstrument, defaultOandaInstrument),
		stringFieldDefault("oanda.default_granularity", &o.DefaultGranularity, defaultOandaGranularity),
		intFieldDefault("oanda.default_candle_count", &o.DefaultCandleCount, defaultOandaCandleCount),
		stringFieldDefault("oanda.watchlist_path", &o.WatchlistPath, defaultOandaWatchlistPath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && *target == 0
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
