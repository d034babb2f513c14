package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if err := c.Database.validate(); err != nil {
		return err
	}
	if err := c.Session.validate(); err != nil {
		return err
	}
	if err := c.Oanda.validate(); err != nil {
		return err
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if strings.TrimSpace(d.Path) == "" {
		return fmt.Errorf("database.path cannot be empty")
	}
	if strings.TrimSpace(d.SessionPath) == "" {
		return fmt.Errorf("database.session_path cannot be empty")
	}
	return nil
}

func (s *SessionConfig) validate() error {
	if s.TTLHours < 0 {
		return fmt.Errorf("session.ttl_hours must be >= 0")
	}
	return nil
}

func (o *OandaConfig) validate() error {
	if o.TimeoutSeconds < 0 {
		return fmt.Errorf("oanda.timeout_seconds must be >= 0")
	}
	if o.DefaultCandleCount < 0 || o.DefaultCandleCount > 5000 {
		return fmt.Errorf("oanda.default_candle_count must be within [0, 5000]")
	}
	if strings.TrimSpace(o.DefaultInstrument) == "" {
		return fmt.Errorf("oanda.default_instrument cannot be empty")
	}
	return nil
}
