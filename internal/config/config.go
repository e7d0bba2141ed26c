// Package config provides Viper-based configuration loading for the combat server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server identity settings.
type ServerConfig struct {
	// Name identifies this server instance in logs.
	Name string `mapstructure:"name"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CombatConfig holds the twitch combat scheduler settings.
type CombatConfig struct {
	// TickInterval is how often each arena drains its action queue.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// DefaultActionDelay is the canonical delay for queued actions that do
	// not declare their own (hold is always immediate).
	DefaultActionDelay time.Duration `mapstructure:"default_action_delay"`
	// FallbackAttackDelay is the delay of the automatic follow-up attack
	// queued after a one-shot action resolves.
	FallbackAttackDelay time.Duration `mapstructure:"fallback_attack_delay"`
}

// WorldConfig holds world content settings.
type WorldConfig struct {
	// ZonesDir is the directory containing zone YAML files.
	ZonesDir string `mapstructure:"zones_dir"`
	// NPCsDir is the directory containing NPC YAML templates.
	NPCsDir string `mapstructure:"npcs_dir"`
	// ItemsDir is the directory containing weapon/item YAML definitions.
	ItemsDir string `mapstructure:"items_dir"`
}

// ScriptingConfig holds Lua item-effect script settings.
type ScriptingConfig struct {
	// ScriptDir is the directory of item effect scripts. Empty disables scripting.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps Lua opcodes per effect invocation. 0 = default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Combat    CombatConfig    `mapstructure:"combat"`
	World     WorldConfig     `mapstructure:"world"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Server.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if c.World.ZonesDir == "" {
		errs = append(errs, "world.zones_dir must not be empty")
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
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
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("combat.tick_interval must be > 0, got %s", c.TickInterval))
	}
	if c.DefaultActionDelay < 0 {
		errs = append(errs, fmt.Sprintf("combat.default_action_delay must be >= 0, got %s", c.DefaultActionDelay))
	}
	if c.FallbackAttackDelay < 0 {
		errs = append(errs, fmt.Sprintf("combat.fallback_attack_delay must be >= 0, got %s", c.FallbackAttackDelay))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with MUD_ prefix
	v.SetEnvPrefix("MUD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
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
	v.SetDefault("server.name", "sundered")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("combat.tick_interval", "1s")
	v.SetDefault("combat.default_action_delay", "1s")
	v.SetDefault("combat.fallback_attack_delay", "3s")

	v.SetDefault("world.zones_dir", "content/zones")
	v.SetDefault("world.npcs_dir", "content/npcs")
	v.SetDefault("world.items_dir", "content/items")

	v.SetDefault("scripting.script_dir", "")
	v.SetDefault("scripting.instruction_limit", 0)
}
