// Package config provides Viper-based configuration loading for the companion.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. COMPANION_LOGGING_LEVEL.
const EnvPrefix = "COMPANION"

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File receives log output when set; otherwise logs go to stderr.
	File string `mapstructure:"file"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite", "postgres".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file used by the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres driver.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// DiceConfig bounds the dice engine.
type DiceConfig struct {
	MaxQuantity     int `mapstructure:"max_quantity"`
	MaxSides        int `mapstructure:"max_sides"`
	MaxModifier     int `mapstructure:"max_modifier"`
	HistoryCapacity int `mapstructure:"history_capacity"`
}

// SessionConfig holds play-session timing and content settings.
type SessionConfig struct {
	// ClockTick is the real time per game-clock second.
	ClockTick time.Duration `mapstructure:"clock_tick"`
	// AutosaveInterval is how often the engine state is saved while playing.
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	// DraftAutosaveInterval is how often a named character draft is saved.
	DraftAutosaveInterval time.Duration `mapstructure:"draft_autosave_interval"`
	// EncounterChance is the probability of an encounter per move, in [0, 1].
	EncounterChance float64 `mapstructure:"encounter_chance"`
	// EncounterScriptDir holds *.lua encounter scripts; empty disables scripting.
	EncounterScriptDir string `mapstructure:"encounter_script_dir"`
	// ScriptInstructionLimit bounds each script call; 0 uses the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
	// RulesetPath overrides the embedded ruleset content when set.
	RulesetPath string `mapstructure:"ruleset_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Dice     DiceConfig     `mapstructure:"dice"`
	Session  SessionConfig  `mapstructure:"session"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres driver is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateDice(c.Dice); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSession(c.Session); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverMemory, DriverPostgres:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [memory, sqlite, postgres], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// maxDiceLimit keeps quantity*sides+modifier far from integer overflow.
const maxDiceLimit = 1_000_000

func validateDice(d DiceConfig) error {
	var errs []string
	if d.MaxQuantity < 1 || d.MaxQuantity > maxDiceLimit {
		errs = append(errs, fmt.Sprintf("dice.max_quantity must be in [1, %d], got %d", maxDiceLimit, d.MaxQuantity))
	}
	if d.MaxSides < 2 || d.MaxSides > maxDiceLimit {
		errs = append(errs, fmt.Sprintf("dice.max_sides must be in [2, %d], got %d", maxDiceLimit, d.MaxSides))
	}
	if d.MaxModifier < 1 || d.MaxModifier > maxDiceLimit {
		errs = append(errs, fmt.Sprintf("dice.max_modifier must be in [1, %d], got %d", maxDiceLimit, d.MaxModifier))
	}
	if d.HistoryCapacity < 1 {
		errs = append(errs, fmt.Sprintf("dice.history_capacity must be >= 1, got %d", d.HistoryCapacity))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSession(s SessionConfig) error {
	var errs []string
	if s.ClockTick <= 0 {
		errs = append(errs, fmt.Sprintf("session.clock_tick must be positive, got %s", s.ClockTick))
	}
	if s.AutosaveInterval <= 0 {
		errs = append(errs, fmt.Sprintf("session.autosave_interval must be positive, got %s", s.AutosaveInterval))
	}
	if s.DraftAutosaveInterval <= 0 {
		errs = append(errs, fmt.Sprintf("session.draft_autosave_interval must be positive, got %s", s.DraftAutosaveInterval))
	}
	if s.EncounterChance < 0 || s.EncounterChance > 1 {
		errs = append(errs, fmt.Sprintf("session.encounter_chance must be in [0, 1], got %g", s.EncounterChance))
	}
	if s.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("session.script_instruction_limit must be >= 0, got %d", s.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// NewViper returns a Viper instance with defaults and COMPANION_ environment
// overrides registered. path, when non-empty, is set as the config file but
// not read.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// Default builds a Config from defaults and environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error caused by an environment override.
func Default() (Config, error) {
	return LoadFromViper(NewViper(""))
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "data/companion.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "companion")
	v.SetDefault("database.password", "companion")
	v.SetDefault("database.name", "companion")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("dice.max_quantity", 1000)
	v.SetDefault("dice.max_sides", 1000)
	v.SetDefault("dice.max_modifier", 1000)
	v.SetDefault("dice.history_capacity", 50)

	v.SetDefault("session.clock_tick", "1s")
	v.SetDefault("session.autosave_interval", "5m")
	v.SetDefault("session.draft_autosave_interval", "30s")
	v.SetDefault("session.encounter_chance", 0.2)
	v.SetDefault("session.encounter_script_dir", "")
	v.SetDefault("session.script_instruction_limit", 0)
	v.SetDefault("session.ruleset_path", "")
}
