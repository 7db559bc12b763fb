package config

import (
	"bytes"
	"os"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/kyjohnso/kessler/internal/dynamo"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0
	DefaultDuration    = 5400.0
	DefaultSpeed       = 60.0
	DefaultSeed        = 42
	DefaultObjects     = 1000
	DefaultSampleEvery = 60

	DefaultHalfSize = 60000.0
	DefaultCapacity = 4
	DefaultMaxDepth = 6

	EnvPrefix = "KESSLER"
)

type Config struct {
	Scenario    string        `yaml:"scenario" mapstructure:"scenario"`
	Integrator  string        `yaml:"integrator" mapstructure:"integrator"`
	Dt          float64       `yaml:"dt" mapstructure:"dt"`
	Duration    float64       `yaml:"duration" mapstructure:"duration"`
	Speed       float64       `yaml:"speed" mapstructure:"speed"`
	Seed        int64         `yaml:"seed" mapstructure:"seed"`
	Objects     int           `yaml:"objects" mapstructure:"objects"`
	Catalog     string        `yaml:"catalog" mapstructure:"catalog"`
	SampleEvery int           `yaml:"sample_every" mapstructure:"sample_every"`
	Octree      OctreeConfig  `yaml:"octree" mapstructure:"octree"`
	Debris      DebrisConfig  `yaml:"debris" mapstructure:"debris"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
	Server      ServerConfig  `yaml:"server" mapstructure:"server"`
	Storage     StorageConfig `yaml:"storage" mapstructure:"storage"`
}

type OctreeConfig struct {
	HalfSize float64 `yaml:"half_size" mapstructure:"half_size"`
	Capacity int     `yaml:"capacity" mapstructure:"capacity"`
	MaxDepth int     `yaml:"max_depth" mapstructure:"max_depth"`
}

type DebrisConfig struct {
	MinFragments   int     `yaml:"min_fragments" mapstructure:"min_fragments"`
	MaxFragments   int     `yaml:"max_fragments" mapstructure:"max_fragments"`
	MassRetention  float64 `yaml:"mass_retention" mapstructure:"mass_retention"`
	KickMin        float64 `yaml:"kick_min" mapstructure:"kick_min"`
	KickMax        float64 `yaml:"kick_max" mapstructure:"kick_max"`
	IgnoreSiblings bool    `yaml:"ignore_siblings" mapstructure:"ignore_siblings"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

type ServerConfig struct {
	Addr        string  `yaml:"addr" mapstructure:"addr"`
	BroadcastHz float64 `yaml:"broadcast_hz" mapstructure:"broadcast_hz"`
}

type StorageConfig struct {
	DataDir  string `yaml:"data_dir" mapstructure:"data_dir"`
	EventsDB string `yaml:"events_db" mapstructure:"events_db"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:    "test_satellites",
		Integrator:  "symplectic_euler",
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Speed:       DefaultSpeed,
		Seed:        DefaultSeed,
		Objects:     DefaultObjects,
		SampleEvery: DefaultSampleEvery,
		Octree: OctreeConfig{
			HalfSize: DefaultHalfSize,
			Capacity: DefaultCapacity,
			MaxDepth: DefaultMaxDepth,
		},
		Debris: DebrisConfig{
			MinFragments:   2,
			MaxFragments:   50,
			MassRetention:  0.1,
			KickMin:        0.1,
			KickMax:        0.5,
			IgnoreSiblings: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			BroadcastHz: 10,
		},
		Storage: StorageConfig{
			DataDir:  ".kessler",
			EventsDB: "events.db",
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidConfig, "parse %s: %v", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadLayered resolves the defaults, then the optional file at path, then
// KESSLER_* environment variables. Nested keys use underscores, so
// octree.max_depth is read from KESSLER_OCTREE_MAX_DEPTH.
func LoadLayered(path string) (*Config, error) {
	return LoadLayeredOver(DefaultConfig(), path)
}

// LoadLayeredOver is LoadLayered with base in place of the defaults.
func LoadLayeredOver(base *Config, path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	data, err := yaml.Marshal(base)
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errorsmod.Wrapf(dynamo.ErrInvalidConfig, "read %s: %v", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errorsmod.Wrapf(dynamo.ErrInvalidConfig, "decode: %v", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Dt <= 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "dt must be positive, got %g", c.Dt)
	case c.Duration <= 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "duration must be positive, got %g", c.Duration)
	case c.Speed <= 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "speed must be positive, got %g", c.Speed)
	case c.Objects < 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "objects must not be negative, got %d", c.Objects)
	case c.Octree.HalfSize <= 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "octree half_size must be positive, got %g", c.Octree.HalfSize)
	case c.Octree.Capacity < 1:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "octree capacity must be at least 1, got %d", c.Octree.Capacity)
	case c.Octree.MaxDepth < 1:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "octree max_depth must be at least 1, got %d", c.Octree.MaxDepth)
	case c.Debris.MinFragments < 2 || c.Debris.MaxFragments < c.Debris.MinFragments:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "fragment bounds [%d, %d] invalid", c.Debris.MinFragments, c.Debris.MaxFragments)
	case c.Debris.MassRetention <= 0 || c.Debris.MassRetention > 1:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "mass_retention must be in (0, 1], got %g", c.Debris.MassRetention)
	case c.Debris.KickMin <= 0 || c.Debris.KickMax < c.Debris.KickMin:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "kick range [%g, %g] invalid", c.Debris.KickMin, c.Debris.KickMax)
	case c.Server.BroadcastHz < 0:
		return errorsmod.Wrapf(dynamo.ErrInvalidConfig, "broadcast_hz must not be negative, got %g", c.Server.BroadcastHz)
	}
	return nil
}

// Apply copies the non-zero run fields of p onto c.
func (c *Config) Apply(p *Config) {
	if p.Scenario != "" {
		c.Scenario = p.Scenario
	}
	if p.Integrator != "" {
		c.Integrator = p.Integrator
	}
	if p.Dt != 0 {
		c.Dt = p.Dt
	}
	if p.Duration != 0 {
		c.Duration = p.Duration
	}
	if p.Speed != 0 {
		c.Speed = p.Speed
	}
	if p.Seed != 0 {
		c.Seed = p.Seed
	}
	if p.Objects != 0 {
		c.Objects = p.Objects
	}
	if p.SampleEvery != 0 {
		c.SampleEvery = p.SampleEvery
	}
}
