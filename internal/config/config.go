package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Session     SessionConfig     `mapstructure:"session" validate:"required"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Storage     StorageConfig     `mapstructure:"storage" validate:"required"`
	Entitlement EntitlementConfig `mapstructure:"entitlement"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// SessionConfig contains the quota and timing rules of a deck session.
type SessionConfig struct {
	// DailyFreeLimit is the number of completions a free user may record per day.
	DailyFreeLimit int `mapstructure:"daily_free_limit" validate:"required,gte=1,lte=50"`
	// FreeDeckSize bounds how many free cards a single deck draw shows.
	FreeDeckSize int `mapstructure:"free_deck_size" validate:"required,gte=1,lte=100"`
	// GateDelay separates the at-capacity signal from the paywall signal.
	GateDelay time.Duration `mapstructure:"gate_delay" validate:"gte=0"`
	// CelebrationDelay precedes the gate when a completion uses up the quota.
	CelebrationDelay time.Duration `mapstructure:"celebration_delay" validate:"gte=0"`
	// Timezone names the IANA location used for calendar days; empty means local time.
	Timezone string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// Location resolves Timezone, falling back to time.Local.
func (s SessionConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CatalogConfig points at the bundled action catalog.
type CatalogConfig struct {
	// Path to a .json, .toml, .yaml or .yml catalog. Empty uses the built-in set.
	Path string `mapstructure:"path"`
}

// StorageConfig selects the settings store backend.
type StorageConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite postgres"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path" validate:"required_if=Driver sqlite"`
	// URL is the postgres connection string.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres"`
}

// EntitlementConfig configures the in-process entitlement service.
type EntitlementConfig struct {
	// Premium seeds the entitlement service's active status.
	Premium bool `mapstructure:"premium"`
}
