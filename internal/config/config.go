package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/mcgl/engine/internal/core/ecs"
)

type Config struct {
	World     WorldConfig     `toml:"world"`
	Loop      LoopConfig      `toml:"loop"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
	Data      DataConfig      `toml:"data"`
	Layers    LayersConfig    `toml:"layers"`
}

type WorldConfig struct {
	Name      string `toml:"name"`
	Capacity  int    `toml:"capacity"` // live entity limit, at most ecs.MaxEntities
	StartTime int64  // set at boot, not from config
}

type LoopConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	MaxTicks int           `toml:"max_ticks"` // 0 = run until signalled
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type DataConfig struct {
	Prefabs string `toml:"prefabs"` // empty: spawn nothing
}

type LayersConfig struct {
	Names []string `toml:"names"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	cfg.World.StartTime = time.Now().Unix()
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.World.Capacity < 1 || c.World.Capacity > ecs.MaxEntities {
		err = multierr.Append(err, fmt.Errorf("world.capacity %d out of range [1, %d]", c.World.Capacity, ecs.MaxEntities))
	}
	if c.Loop.TickRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("loop.tick_rate must be positive, got %s", c.Loop.TickRate))
	}
	if c.Loop.MaxTicks < 0 {
		err = multierr.Append(err, fmt.Errorf("loop.max_ticks must not be negative, got %d", c.Loop.MaxTicks))
	}
	if _, lerr := zapcore.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		err = multierr.Append(err, fmt.Errorf("logging.format %q: want json or console", c.Logging.Format))
	}
	if len(c.Layers.Names) > ecs.MaxLayers {
		err = multierr.Append(err, fmt.Errorf("layers.names has %d entries, max %d", len(c.Layers.Names), ecs.MaxLayers))
	}
	seen := make(map[string]bool, len(c.Layers.Names))
	for _, n := range c.Layers.Names {
		switch {
		case n == "":
			err = multierr.Append(err, fmt.Errorf("layers.names: empty layer name"))
		case seen[n]:
			err = multierr.Append(err, fmt.Errorf("layers.names: duplicate layer %q", n))
		}
		seen[n] = true
	}
	return err
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Name:     "mcgl",
			Capacity: ecs.MaxEntities,
		},
		Loop: LoopConfig{
			TickRate: 16 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Layers: LayersConfig{
			Names: []string{"default", "world", "ui"},
		},
	}
}
