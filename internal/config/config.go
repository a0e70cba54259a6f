// Package config provides Viper-based configuration loading for the ARPG simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the combat engine timings.
type CombatConfig struct {
	// TickUnit is the wall duration of one combat tick.
	TickUnit time.Duration `mapstructure:"tick_unit"`
	// CountdownInterval is the delay between countdown steps before combat.
	CountdownInterval time.Duration `mapstructure:"countdown_interval"`
	// AttackAnimation is how long the attacking animation locks an actor.
	AttackAnimation time.Duration `mapstructure:"attack_animation"`
	// SearchDepth is the minimax ply depth.
	SearchDepth int `mapstructure:"search_depth"`
	// DamageLogSize caps each actor's damage log.
	DamageLogSize int `mapstructure:"damage_log_size"`
	// MessageDurationTicks is how long a transient player message is shown.
	MessageDurationTicks int `mapstructure:"message_duration_ticks"`
}

// ContentConfig locates the YAML content tables.
type ContentConfig struct {
	// Dir is a directory of YAML content files. Empty selects the embedded defaults.
	Dir string `mapstructure:"dir"`
}

// RedisConfig holds save-store connection settings.
type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	DB        int           `mapstructure:"db"`
	Password  string        `mapstructure:"password"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// DatabaseConfig holds PostgreSQL connection settings.
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

// SimulatorConfig drives the headless simulator.
type SimulatorConfig struct {
	// Seed makes the run reproducible. Zero selects the crypto-backed source.
	Seed uint64 `mapstructure:"seed"`
	// Encounters is the number of encounters to play back to back.
	Encounters int `mapstructure:"encounters"`
	// PlayerName names a new game's player.
	PlayerName string `mapstructure:"player_name"`
	// SaveSlot is the save-store slot loaded at start and written after every encounter.
	// Empty disables the save store.
	SaveSlot string `mapstructure:"save_slot"`
	// PersistHistory archives every finished encounter to PostgreSQL.
	PersistHistory bool `mapstructure:"persist_history"`
	// Realtime drives the engine with the wall clock instead of fast-forwarding.
	Realtime bool `mapstructure:"realtime"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Content   ContentConfig   `mapstructure:"content"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulator(c.Simulator); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Simulator.SaveSlot != "" {
		if err := validateRedis(c.Redis); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Simulator.PersistHistory {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
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

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.TickUnit <= 0 {
		errs = append(errs, fmt.Sprintf("combat.tick_unit must be > 0, got %s", c.TickUnit))
	}
	if c.CountdownInterval <= 0 {
		errs = append(errs, fmt.Sprintf("combat.countdown_interval must be > 0, got %s", c.CountdownInterval))
	}
	if c.AttackAnimation < 0 {
		errs = append(errs, "combat.attack_animation must not be negative")
	}
	if c.SearchDepth < 1 || c.SearchDepth > 12 {
		errs = append(errs, fmt.Sprintf("combat.search_depth must be 1-12, got %d", c.SearchDepth))
	}
	if c.DamageLogSize < 0 {
		errs = append(errs, fmt.Sprintf("combat.damage_log_size must be >= 0, got %d", c.DamageLogSize))
	}
	if c.MessageDurationTicks < 1 {
		errs = append(errs, fmt.Sprintf("combat.message_duration_ticks must be >= 1, got %d", c.MessageDurationTicks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulator(s SimulatorConfig) error {
	var errs []string
	if s.Encounters < 0 {
		errs = append(errs, fmt.Sprintf("simulator.encounters must be >= 0, got %d", s.Encounters))
	}
	if s.PlayerName == "" {
		errs = append(errs, "simulator.player_name must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRedis(r RedisConfig) error {
	var errs []string
	if r.Addr == "" {
		errs = append(errs, "redis.addr must not be empty")
	}
	if r.DB < 0 {
		errs = append(errs, fmt.Sprintf("redis.db must be >= 0, got %d", r.DB))
	}
	if r.KeyPrefix == "" {
		errs = append(errs, "redis.key_prefix must not be empty")
	}
	if r.TTL < 0 {
		errs = append(errs, "redis.ttl must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ARPG_ prefix
	v.SetEnvPrefix("ARPG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
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

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.tick_unit", "600ms")
	v.SetDefault("combat.countdown_interval", "1s")
	v.SetDefault("combat.attack_animation", "200ms")
	v.SetDefault("combat.search_depth", 7)
	v.SetDefault("combat.damage_log_size", 32)
	v.SetDefault("combat.message_duration_ticks", 4)

	v.SetDefault("content.dir", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.key_prefix", "arpg")
	v.SetDefault("redis.ttl", "0s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arpg")
	v.SetDefault("database.password", "arpg")
	v.SetDefault("database.name", "arpg")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("simulator.seed", 0)
	v.SetDefault("simulator.encounters", 10)
	v.SetDefault("simulator.player_name", "Player")
	v.SetDefault("simulator.save_slot", "")
	v.SetDefault("simulator.persist_history", false)
	v.SetDefault("simulator.realtime", false)
}
