package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/minesweeper/internal/game"
	"github.com/gravitas-games/minesweeper/internal/minefield"
)

// Placement strategies accepted in game.placement
const (
	PlacementShuffle   = "shuffle"
	PlacementRejection = "rejection"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Game    GameConfig    `yaml:"game"`
	Auth    AuthConfig    `yaml:"auth"`
	Redis   RedisConfig   `yaml:"redis"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GameConfig fixes the board every session is dealt
type GameConfig struct {
	Rows        int    `yaml:"rows"`
	Cols        int    `yaml:"cols"`
	Mines       int    `yaml:"mines"`
	Placement   string `yaml:"placement"`    // "shuffle" or "rejection"
	MaxAttempts int    `yaml:"max_attempts"` // rejection placement only
}

// AuthConfig holds JWT authentication settings
type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Issuer        string `yaml:"issuer"`
	PublicKeyFile string `yaml:"public_key_file"` // PEM encoded ECDSA key
}

// RedisConfig holds the token blacklist connection. An empty address
// disables the blacklist.
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultMines is used when the game section leaves mines unset. It is
// seeded before decoding so an explicit zero survives.
const DefaultMines = 40

func newConfig() *Config {
	return &Config{Game: GameConfig{Mines: DefaultMines}}
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	cfg := newConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Game.Rows == 0 {
		c.Game.Rows = 20
	}
	if c.Game.Cols == 0 {
		c.Game.Cols = 20
	}
	if c.Game.Placement == "" {
		c.Game.Placement = PlacementShuffle
	}
	if c.Game.MaxAttempts == 0 {
		c.Game.MaxAttempts = 1000
	}
	if c.Redis.BlacklistPrefix == "" {
		c.Redis.BlacklistPrefix = "jwt:blacklist:"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate rejects configurations no session could be built from
func (c *Config) Validate() error {
	if err := c.Game.Session().Validate(); err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	switch c.Game.Placement {
	case PlacementShuffle, PlacementRejection:
	default:
		return fmt.Errorf("invalid game config: unknown placement %q", c.Game.Placement)
	}
	if c.Game.MaxAttempts < 0 {
		return fmt.Errorf("invalid game config: max_attempts must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server config: port %d out of range", c.Server.Port)
	}
	if c.Auth.Enabled && c.Auth.PublicKeyFile == "" {
		return fmt.Errorf("invalid auth config: public_key_file is required when auth is enabled")
	}
	return nil
}

// Session converts the game section into a session configuration
func (g GameConfig) Session() game.Config {
	return game.Config{Rows: g.Rows, Cols: g.Cols, Mines: g.Mines}
}

// Placer builds the configured mine placer drawing from src
func (g GameConfig) Placer(src minefield.Source) minefield.Placer {
	if g.Placement == PlacementRejection {
		return minefield.RejectionPlacer{Rand: src, MaxAttempts: g.MaxAttempts}
	}
	return minefield.ShufflePlacer{Rand: src}
}
