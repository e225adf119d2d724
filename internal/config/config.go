package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	JWT     JWTConfig     `yaml:"jwt"`
	Redis   RedisConfig   `yaml:"redis"`
	Map     MapConfig     `yaml:"map"`
	Terrain TerrainConfig `yaml:"terrain"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxQueryRadius int    `yaml:"max_query_radius"` // upper bound for range/ring/reach requests
	MaxMapTiles    int    `yaml:"max_map_tiles"`    // upper bound for populate requests
	MaxCoordinate  int    `yaml:"max_coordinate"`   // upper bound for |q|, |r| and |q+r| in requests
}

// JWTConfig holds JWT authentication settings.
// Authentication is disabled when PublicKeyURL is empty.
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// Enabled reports whether tokens are required.
func (j JWTConfig) Enabled() bool { return j.PublicKeyURL != "" }

// RedisConfig holds Redis connection settings.
// The token blacklist is not consulted when Address is empty.
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// MapConfig describes the grid served at startup
type MapConfig struct {
	Layout     string  `yaml:"layout"` // "pointy" or "flat"
	TileWidth  float64 `yaml:"tile_width"`
	TileHeight float64 `yaml:"tile_height"`
	OriginX    float64 `yaml:"origin_x"`
	OriginY    float64 `yaml:"origin_y"`
	Shape      string  `yaml:"shape"`  // see shape.ParseKind
	Params     []int   `yaml:"params"` // outline parameters in constructor order
}

// TerrainConfig holds the noise parameters for tile generation
type TerrainConfig struct {
	Seed          int64   `yaml:"seed"`
	SeaLevel      float64 `yaml:"sea_level"`
	MountainLevel float64 `yaml:"mountain_level"`
	Frequency     float64 `yaml:"frequency"`
	Octaves       int     `yaml:"octaves"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (cfg *Config) setDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxQueryRadius == 0 {
		cfg.Server.MaxQueryRadius = 32
	}
	if cfg.Server.MaxMapTiles == 0 {
		cfg.Server.MaxMapTiles = 20000
	}
	if cfg.Server.MaxCoordinate == 0 {
		cfg.Server.MaxCoordinate = 1 << 20
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "blacklist:"
	}
	if cfg.Map.Layout == "" {
		cfg.Map.Layout = "pointy"
	}
	if cfg.Map.TileWidth == 0 {
		cfg.Map.TileWidth = 50
	}
	if cfg.Map.TileHeight == 0 {
		cfg.Map.TileHeight = 50
	}
	if cfg.Map.Shape == "" {
		cfg.Map.Shape = "hexagon"
		if len(cfg.Map.Params) == 0 {
			cfg.Map.Params = []int{8}
		}
	}
	if cfg.Terrain.SeaLevel == 0 {
		cfg.Terrain.SeaLevel = 0.3
	}
	if cfg.Terrain.MountainLevel == 0 {
		cfg.Terrain.MountainLevel = 0.75
	}
	if cfg.Terrain.Frequency == 0 {
		cfg.Terrain.Frequency = 0.15
	}
	if cfg.Terrain.Octaves == 0 {
		cfg.Terrain.Octaves = 3
	}
}
