// Command voxelcore runs the headless core tick loop: no window, no GPU,
// no audio — those remain external collaborators. It exists so the three
// concurrent subsystems (mesh pipeline, lighting engine, async pathfinder)
// can be exercised end to end from a single binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxelcore/internal/config"
	"voxelcore/internal/entity"
	"voxelcore/internal/game"
)

func main() {
	os.Exit(run())
}

func run() int {
	width := flag.Int("width", 0, "world width in blocks (multiple of 16)")
	height := flag.Int("height", 0, "world height in blocks, <=128")
	fullscreen := flag.Bool("fullscreen", false, "accepted for interface parity with the external renderer; ignored by the core")
	configPath := flag.String("config", "", "optional TOML config file")
	ticks := flag.Int("ticks", 0, "run a bounded number of ticks and exit (0 = run until interrupted)")
	flag.Parse()

	_ = *fullscreen

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 1
		}
		cfg = loaded
	}
	if *width > 0 {
		cfg.World.Width = *width
		cfg.World.Depth = *width
	}
	if *height > 0 {
		cfg.World.Height = *height
	}
	cfg.Clamp()

	meshWorkers := cfg.MeshWorkers
	if meshWorkers == 0 {
		meshWorkers = maxInt(1, runtime.NumCPU()-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := game.New(ctx, game.Config{
		Width:       cfg.World.Width,
		Height:      cfg.World.Height,
		Depth:       cfg.World.Depth,
		MeshWorkers: meshWorkers,
		PathWorkers: cfg.PathWorkers,
		LightBudget: cfg.LightBudget,
	}, log)
	defer g.Shutdown()

	g.Lighting.Initialize()

	// A demo entity keeps the async pathfinder and the entity registry
	// exercised from this binary, not only from package tests: it walks
	// toward the far corner of the world, jumping to the end of each
	// non-empty path drained for it and then requesting a new one; after a
	// request that yields no path, no further request is made.
	player := entity.New(0.6, 1.8, false)
	player.Position = mgl32.Vec3{float32(cfg.World.Width) / 2, float32(cfg.World.Height) / 2, float32(cfg.World.Depth) / 2}
	g.Entities.Add(player)
	target := [3]int{cfg.World.Width - 2, cfg.World.Height / 2, cfg.World.Depth - 2}
	g.RequestPath(player, target, 64)

	log.Info("voxelcore starting",
		slog.Int("width", cfg.World.Width),
		slog.Int("height", cfg.World.Height),
		slog.Int("depth", cfg.World.Depth),
		slog.Int("tick_rate", cfg.TickRate),
	)

	dt := time.Second / time.Duration(cfg.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	count := 0
	for range ticker.C {
		g.Tick(dt.Seconds())
		if len(player.Path) > 0 {
			advanceAlongPath(player)
			g.RequestPath(player, target, 64)
		}
		count++
		if *ticks > 0 && count >= *ticks {
			break
		}
	}
	return 0
}

// advanceAlongPath moves the demo entity to the far end of its most
// recently drained path and clears it, so the next tick's len(Path)>0
// check only fires once a fresh result has been drained.
func advanceAlongPath(e *entity.Entity) {
	step := e.Path[len(e.Path)-1]
	e.Position = mgl32.Vec3{float32(step[0]) + 0.5, float32(step[1]), float32(step[2]) + 0.5}
	e.Path = nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
