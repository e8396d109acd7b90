// Package config loads the engine and world tunables, keeping the
// teacher's clamp-rather-than-reject convention (EngineConfig.Clamp bounds
// each value to a sane range) but replacing its package-level singleton with explicit
// structs threaded through the Game constructor, per Design Notes' "no
// process-wide state".
package config

import (
	"os"

	toml "github.com/pelletier/go-toml"
)

// WorldConfig describes the fixed World Grid dimensions.
type WorldConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Depth  int `toml:"depth"`
}

// EngineConfig bundles everything Game.New needs beyond the grid size.
type EngineConfig struct {
	World       WorldConfig `toml:"world"`
	MeshWorkers int         `toml:"mesh_workers"`
	PathWorkers int         `toml:"path_workers"`
	LightBudget int         `toml:"light_budget"`
	TickRate    int         `toml:"tick_rate"`
}

// Default returns the documented defaults used when no config file is
// given.
func Default() EngineConfig {
	return EngineConfig{
		World:       WorldConfig{Width: 256, Height: 128, Depth: 256},
		MeshWorkers: 0, // 0 means max(1, cores-1), resolved by the caller
		PathWorkers: 2,
		LightBudget: 1024,
		TickRate:    20,
	}
}

// Load reads path as TOML into a copy of Default(), so a partial file only
// overrides the fields it sets.
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Clamp applies the same "clamp rather than reject" convention the
// teacher's render settings used, bounding values to ranges the engine can
// run with.
func (c *EngineConfig) Clamp() {
	if c.World.Width < 16 {
		c.World.Width = 16
	}
	if c.World.Height < 16 {
		c.World.Height = 16
	}
	if c.World.Height > 128 {
		c.World.Height = 128
	}
	if c.World.Depth < 16 {
		c.World.Depth = 16
	}
	if c.MeshWorkers < 0 {
		c.MeshWorkers = 0
	}
	if c.PathWorkers < 1 {
		c.PathWorkers = 1
	}
	if c.LightBudget < 1 {
		c.LightBudget = 1
	}
	if c.TickRate < 1 {
		c.TickRate = 1
	}
	if c.TickRate > 120 {
		c.TickRate = 120
	}
}
