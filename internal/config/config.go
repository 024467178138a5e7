package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/hexlands/internal/gamemap"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	JWT     JWTConfig     `yaml:"jwt"`
	Redis   RedisConfig   `yaml:"redis"`
	Session SessionConfig `yaml:"session"`
	Map     MapConfig     `yaml:"map"`
	Harvest HarvestConfig `yaml:"harvest"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TickRate int    `yaml:"tick_rate"` // Hz
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// SessionConfig holds game session settings
type SessionConfig struct {
	MaxPlayers int `yaml:"max_players"`
}

// MapConfig holds generation settings for the session map
type MapConfig struct {
	Seed          int64              `yaml:"seed"` // 0 = seeded from the clock
	MaxViewRadius int                `yaml:"max_view_radius"`
	Weights       gamemap.Weights    `yaml:"weights"`
	Resources     map[string]float64 `yaml:"resources"`
	Decor         DecorConfig        `yaml:"decor"`
}

// DecorConfig holds tile modifier noise settings. The levels are pointers so
// an explicit 0 survives defaulting: moss_level 0 turns moss off.
type DecorConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Scale      float64  `yaml:"scale"`
	GrassLevel *float64 `yaml:"grass_level"`
	MossLevel  *float64 `yaml:"moss_level"`
}

// Params returns generator decor settings for seed; unset levels take the
// package defaults.
func (d DecorConfig) Params(seed int64) gamemap.Decor {
	out := gamemap.DefaultDecor(seed)
	if d.Scale != 0 {
		out.Scale = d.Scale
	}
	if d.GrassLevel != nil {
		out.GrassLevel = *d.GrassLevel
	}
	if d.MossLevel != nil {
		out.MossLevel = *d.MossLevel
	}
	return out
}

// HarvestConfig holds resource respawn settings
type HarvestConfig struct {
	RespawnSeconds int `yaml:"respawn_seconds"`
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
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.TickRate == 0 {
		cfg.Server.TickRate = 20
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Session.MaxPlayers == 0 {
		cfg.Session.MaxPlayers = 100
	}
	if cfg.Map.MaxViewRadius == 0 {
		cfg.Map.MaxViewRadius = 12
	}
	if cfg.Map.Weights == (gamemap.Weights{}) {
		cfg.Map.Weights = DefaultWeights()
	}
	if cfg.Map.Decor.Enabled {
		def := gamemap.DefaultDecor(0)
		if cfg.Map.Decor.Scale == 0 {
			cfg.Map.Decor.Scale = def.Scale
		}
		if cfg.Map.Decor.GrassLevel == nil {
			cfg.Map.Decor.GrassLevel = &def.GrassLevel
		}
		if cfg.Map.Decor.MossLevel == nil {
			cfg.Map.Decor.MossLevel = &def.MossLevel
		}
	}
	if cfg.Harvest.RespawnSeconds == 0 {
		cfg.Harvest.RespawnSeconds = 30
	}
}

// DefaultWeights are the category odds used when none are configured
func DefaultWeights() gamemap.Weights {
	return gamemap.Weights{Obstacle: 30, Resource: 25, Enemy: 20, Campfire: 5, Boss: 1}
}

// Validate checks values that have no sensible default
func (cfg *Config) Validate() error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if cfg.Server.TickRate < 0 {
		return fmt.Errorf("server.tick_rate must be positive")
	}
	if cfg.Map.MaxViewRadius < 0 {
		return fmt.Errorf("map.max_view_radius must not be negative")
	}
	if err := cfg.Map.Weights.Validate(); err != nil {
		return fmt.Errorf("map.weights: %w", err)
	}
	for name, w := range cfg.Map.Resources {
		if w < 0 {
			return fmt.Errorf("map.resources.%s: negative weight", name)
		}
	}
	if cfg.Harvest.RespawnSeconds < 0 {
		return fmt.Errorf("harvest.respawn_seconds must not be negative")
	}
	return nil
}

// TickInterval is the session tick period derived from the tick rate
func (cfg *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(cfg.Server.TickRate)
}

// RespawnDelay is the harvest respawn delay
func (cfg *Config) RespawnDelay() time.Duration {
	return time.Duration(cfg.Harvest.RespawnSeconds) * time.Second
}

// ResourceKinds returns configured resource names in sorted order with their weights
func (m MapConfig) ResourceKinds() ([]string, []float64) {
	names := make([]string, 0, len(m.Resources))
	for name := range m.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	weights := make([]float64, len(names))
	for i, name := range names {
		weights[i] = m.Resources[name]
	}
	return names, weights
}
