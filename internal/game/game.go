// Package game hosts the Game container: the single struct owning the
// World Grid, Lighting Engine, Chunk Mesh Builder and Async Pathfinder
// (Design Notes: no process-wide singleton state), and the tick sequencing
// that ties them together.
package game

import (
	"context"
	"log/slog"

	"voxelcore/internal/entity"
	"voxelcore/internal/lighting"
	"voxelcore/internal/meshing"
	"voxelcore/internal/pathfinding"
	"voxelcore/internal/profiling"
	"voxelcore/internal/world"
)

// Config bundles the tunables Game needs at construction.
type Config struct {
	Width, Height, Depth int
	MeshWorkers           int
	PathWorkers           int
	LightBudget           int
	CameraDistance        func(meshing.ChunkCoord) float64
}

// Game owns every core subsystem and sequences one tick per spec §5's
// ordering guarantees: entity ticks -> ProcessUpdates -> mesh submission
// -> drains.
type Game struct {
	World      *world.World
	Lighting   *lighting.Engine
	Meshing    *meshing.Builder
	Pathfinder *pathfinding.Pathfinder
	Entities   *entity.Registry

	log         *slog.Logger
	lightBudget int
	cameraDist  func(meshing.ChunkCoord) float64
}

// New builds a Game and wires the listener chain: World edits reach both
// the lighting engine and the mesh builder's dirty-set without World
// importing either package.
func New(ctx context.Context, cfg Config, log *slog.Logger) *Game {
	kinds := world.NewKindTable()
	w := world.New(cfg.Width, cfg.Height, cfg.Depth, kinds, log)

	builder := meshing.NewBuilder(ctx, w.Grid, kinds, cfg.MeshWorkers, log)
	var eng *lighting.Engine
	eng = lighting.New(w.Grid, kinds, log, func(x, y, z int) {
		w.NotifyLightChanged(x, y, z)
	})
	pf := pathfinding.New(ctx, kinds, cfg.PathWorkers, log)

	w.AddListener(eng)
	w.AddListener(builder)

	budget := cfg.LightBudget
	if budget <= 0 {
		budget = 1024
	}
	dist := cfg.CameraDistance
	if dist == nil {
		dist = func(meshing.ChunkCoord) float64 { return 0 }
	}

	return &Game{
		World:       w,
		Lighting:    eng,
		Meshing:     builder,
		Pathfinder:  pf,
		Entities:    entity.NewRegistry(),
		log:         log,
		lightBudget: budget,
		cameraDist:  dist,
	}
}

// RequestPath captures a block snapshot around start and queues an async
// pathfinding request for e, returning the request id (spec §3/§4.6).
func (g *Game) RequestPath(e *entity.Entity, target [3]int, maxDistance float64) int64 {
	start := [3]int{int(e.Position.X()), int(e.Position.Y()), int(e.Position.Z())}
	radius := world.SnapshotRadius(maxDistance)
	snap := world.CaptureBlockSnapshot(g.World.Grid, start[0], start[2], radius)
	w, h := e.BoundingBoxForPath()
	return g.Pathfinder.QueueRequest(e.ID, snap, w, h, start, target, maxDistance)
}

// Tick runs one world tick: sync entity occupancy, lighting's budgeted
// drain, mesh resubmission for every chunk the builder still has marked
// dirty, then drains of both the mesh builder and the async pathfinder,
// matching spec §5's ordering guarantees within a tick.
func (g *Game) Tick(dt float64) {
	profiling.ResetFrame()

	func() {
		defer profiling.Track("entity.SyncOccupants")()
		g.Entities.SyncOccupants(g.World)
	}()

	func() {
		defer profiling.Track("lighting.ProcessUpdates")()
		g.Lighting.ProcessUpdates(g.lightBudget)
	}()

	func() {
		defer profiling.Track("meshing.Submit")()
		for _, c := range g.Meshing.DirtyChunks() {
			g.Meshing.QueueChunk(c, g.cameraDist(c))
		}
	}()

	func() {
		defer profiling.Track("meshing.Drain")()
		_ = g.Meshing.DrainCompleted()
	}()

	func() {
		defer profiling.Track("pathfinding.Drain")()
		g.Entities.Each(func(e *entity.Entity) {
			if results := g.Pathfinder.DrainCompleted(e.ID); len(results) > 0 {
				e.Path = results[len(results)-1].Path
			}
		})
	}()

	if g.log != nil {
		g.log.Debug("tick", slog.String("top", profiling.TopN(3)))
	}
}

// Shutdown stops the mesh and pathfinding worker pools.
func (g *Game) Shutdown() {
	g.Meshing.Shutdown()
	g.Pathfinder.Shutdown()
}
