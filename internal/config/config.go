// Package config provides Viper-based configuration loading for the tactics engine and its tools.
package config

import (
	"fmt"
	"net"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the combat log archive.
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

// DSN returns the postgres:// URL for d, escaping credentials.
//
// Precondition: d has passed validation.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// envPrefix namespaces environment overrides.
const envPrefix = "TACTICS"

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or console
}

// EngineConfig holds combat engine defaults.
type EngineConfig struct {
	// ActionsPerTurn is the shared per-turn action budget of a new match.
	ActionsPerTurn int `mapstructure:"actions_per_turn"`
	// DefaultGridSize is used when a scenario does not declare a size.
	DefaultGridSize int `mapstructure:"default_grid_size"`
	// MaxTurns bounds a simulated match; 0 means unbounded.
	MaxTurns int `mapstructure:"max_turns"`
	// TurnDuration, when positive, advances turns on a timer instead of on request.
	TurnDuration time.Duration `mapstructure:"turn_duration"`
}

// ContentConfig locates the YAML content directories.
type ContentConfig struct {
	SkillsDir    string `mapstructure:"skills_dir"`
	NPCsDir      string `mapstructure:"npcs_dir"`
	ScenariosDir string `mapstructure:"scenarios_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or one error naming
// every violated key.
func (c Config) Validate() error {
	var v violations
	c.Logging.validate(&v)
	c.Database.validate(&v)
	c.Engine.validate(&v)
	c.Content.validate(&v)
	return v.err()
}

// violations accumulates failed checks so Validate reports all of them at once.
type violations []string

func (v *violations) require(ok bool, format string, args ...any) {
	if !ok {
		*v = append(*v, fmt.Sprintf(format, args...))
	}
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(v, "; "))
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "console"}
	sslModes   = []string{"disable", "require", "verify-ca", "verify-full"}
)

func (l LoggingConfig) validate(v *violations) {
	v.require(slices.Contains(logLevels, l.Level), "logging.level %q not in %v", l.Level, logLevels)
	v.require(slices.Contains(logFormats, l.Format), "logging.format %q not in %v", l.Format, logFormats)
}

func (d DatabaseConfig) validate(v *violations) {
	v.require(d.Host != "", "database.host is required")
	v.require(d.Port >= 1 && d.Port <= 65535, "database.port %d outside 1-65535", d.Port)
	v.require(d.User != "", "database.user is required")
	v.require(d.Name != "", "database.name is required")
	v.require(slices.Contains(sslModes, d.SSLMode), "database.sslmode %q not in %v", d.SSLMode, sslModes)
	v.require(d.MaxConns >= 1, "database.max_conns must be >= 1, got %d", d.MaxConns)
	v.require(d.MinConns >= 0, "database.min_conns must be >= 0, got %d", d.MinConns)
	v.require(d.MinConns <= d.MaxConns, "database.min_conns %d exceeds database.max_conns %d", d.MinConns, d.MaxConns)
}

func (e EngineConfig) validate(v *violations) {
	v.require(e.ActionsPerTurn >= 1, "engine.actions_per_turn must be >= 1, got %d", e.ActionsPerTurn)
	v.require(e.DefaultGridSize >= 1, "engine.default_grid_size must be >= 1, got %d", e.DefaultGridSize)
	v.require(e.MaxTurns >= 0, "engine.max_turns must be >= 0, got %d", e.MaxTurns)
	v.require(e.TurnDuration >= 0, "engine.turn_duration must not be negative, got %s", e.TurnDuration)
}

func (c ContentConfig) validate(v *violations) {
	v.require(c.SkillsDir != "", "content.skills_dir is required")
	v.require(c.NPCsDir != "", "content.npcs_dir is required")
}

// Load reads the YAML file at path, layers TACTICS_* environment overrides and
// defaults underneath, and validates the result.
//
// Precondition: path names a readable YAML file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file %q: %w", path, err)
	}
	return LoadFromViper(v)
}

// LoadFromViper decodes and validates a Config from v.
//
// Precondition: v must be non-nil.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewViper returns a Viper instance with every default set and TACTICS_*
// environment overrides enabled, e.g. TACTICS_ENGINE_MAX_TURNS.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tactics")
	v.SetDefault("database.password", "tactics")
	v.SetDefault("database.name", "tactics")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("engine.actions_per_turn", 3)
	v.SetDefault("engine.default_grid_size", 10)
	v.SetDefault("engine.max_turns", 50)
	v.SetDefault("engine.turn_duration", "0s")

	v.SetDefault("content.skills_dir", "content/skills")
	v.SetDefault("content.npcs_dir", "content/npcs")
	v.SetDefault("content.scenarios_dir", "content/scenarios")
}
