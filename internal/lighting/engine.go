// Package lighting implements the two-layer (sky, block) queued BFS
// propagation engine described for the World Grid: bounded-volume update
// rectangles, incremental re-light and dark-removal passes, and a
// main-thread drain bounded by a per-tick budget.
package lighting

import (
	"log/slog"

	"voxelcore/internal/world"
)

// Layer identifies one of the two independent light fields.
type Layer uint8

const (
	Sky Layer = iota
	Block
)

const (
	maxRectVolume   = 32768
	maxVisited      = 50000
	mergeWindow     = 5
	mergeVolumeSlop = 2
)

// rect is a light-update record: a layer plus an axis-aligned integer box
// in world space.
type rect struct {
	Layer                  Layer
	MinX, MinY, MinZ       int
	MaxX, MaxY, MaxZ       int
}

func (r rect) volume() int {
	return (r.MaxX - r.MinX) * (r.MaxY - r.MinY) * (r.MaxZ - r.MinZ)
}

func (r rect) contains(o rect) bool {
	return r.Layer == o.Layer &&
		o.MinX >= r.MinX && o.MaxX <= r.MaxX &&
		o.MinY >= r.MinY && o.MaxY <= r.MaxY &&
		o.MinZ >= r.MinZ && o.MaxZ <= r.MaxZ
}

func (r rect) union(o rect) rect {
	u := r
	if o.MinX < u.MinX {
		u.MinX = o.MinX
	}
	if o.MinY < u.MinY {
		u.MinY = o.MinY
	}
	if o.MinZ < u.MinZ {
		u.MinZ = o.MinZ
	}
	if o.MaxX > u.MaxX {
		u.MaxX = o.MaxX
	}
	if o.MaxY > u.MaxY {
		u.MaxY = o.MaxY
	}
	if o.MaxZ > u.MaxZ {
		u.MaxZ = o.MaxZ
	}
	return u
}

func (r rect) withinMargin(o rect, margin int) bool {
	return o.MinX >= r.MinX-margin && o.MaxX <= r.MaxX+margin &&
		o.MinY >= r.MinY-margin && o.MaxY <= r.MaxY+margin &&
		o.MinZ >= r.MinZ-margin && o.MaxZ <= r.MaxZ+margin
}

// Engine owns the light-update queue and performs both the incremental
// edit-triggered passes and the budgeted per-tick drain.
type Engine struct {
	grid  *world.Grid
	kinds *world.KindTable
	log   *slog.Logger

	onLightChanged func(x, y, z int)

	queue []rect
}

// New builds a lighting engine bound to grid/kinds. onLightChanged, if
// non-nil, is invoked after every cell write so the mesh builder's
// dirty-set reacts to pure light changes.
func New(grid *world.Grid, kinds *world.KindTable, log *slog.Logger, onLightChanged func(x, y, z int)) *Engine {
	return &Engine{grid: grid, kinds: kinds, log: log, onLightChanged: onLightChanged}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// QueueUpdate clamps aabb to world bounds, drops it if the resulting
// volume exceeds 32768 cells, and otherwise either merges it into one of
// the most-recent 5 queued entries (when contained, or within a 1-cell
// margin with a volume increase <=2) or appends it.
func (e *Engine) QueueUpdate(layer Layer, minX, minY, minZ, maxX, maxY, maxZ int) {
	r := rect{
		Layer: layer,
		MinX:  clampInt(minX, 0, e.grid.W),
		MinY:  clampInt(minY, 0, e.grid.H),
		MinZ:  clampInt(minZ, 0, e.grid.D),
		MaxX:  clampInt(maxX, 0, e.grid.W),
		MaxY:  clampInt(maxY, 0, e.grid.H),
		MaxZ:  clampInt(maxZ, 0, e.grid.D),
	}
	if r.MaxX <= r.MinX || r.MaxY <= r.MinY || r.MaxZ <= r.MinZ {
		return
	}
	if r.volume() > maxRectVolume {
		if e.log != nil {
			e.log.Warn("lighting update volume too large, dropping", slog.Int("volume", r.volume()))
		}
		return
	}

	start := 0
	if len(e.queue)-mergeWindow > 0 {
		start = len(e.queue) - mergeWindow
	}
	for i := len(e.queue) - 1; i >= start; i-- {
		existing := e.queue[i]
		if existing.contains(r) {
			return
		}
		if existing.Layer == r.Layer && existing.withinMargin(r, 1) {
			merged := existing.union(r)
			if merged.volume()-existing.volume() <= mergeVolumeSlop {
				e.queue[i] = merged
				return
			}
		}
	}
	e.queue = append(e.queue, r)
}

func (e *Engine) enqueueCell(layer Layer, x, y, z int) {
	e.QueueUpdate(layer, x, y, z, x+1, y+1, z+1)
}

var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// QueueUpdateAt is the block-edit entry point (spec §4.4): it must be
// called after the new id is already written to the grid but before the
// next ProcessUpdates drain, so the still-stale light planes reflect the
// pre-edit state.
func (e *Engine) QueueUpdateAt(x, y, z int) {
	if !e.grid.InBounds(x, y, z) {
		return
	}

	oldBlockLight := e.grid.BlockLight(x, y, z)
	newEmission := e.grid.Emission(x, y, z)
	if oldBlockLight > newEmission {
		e.darknessRemoval(Block, x, y, z, oldBlockLight)
	}

	atten := e.grid.Attenuation(x, y, z)
	// Attenuation 1 is the air-like minimum: such kinds leave the column's
	// sky path open, so they take the re-flood branch.
	if atten > 1 {
		for yy := y; yy >= 0; yy-- {
			if e.grid.Attenuation(x, yy, z) == 15 && yy != y {
				break
			}
			cur := e.grid.SkyLight(x, yy, z)
			if cur > 0 && !e.grid.SkyLit(x, yy, z) {
				e.darknessRemoval(Sky, x, yy, z, cur)
			}
		}
	} else {
		e.reFloodColumnSky(x, z)
	}

	e.relightAt(Sky, x, y, z)
	e.relightAt(Block, x, y, z)
	for _, d := range neighborOffsets {
		e.relightAt(Sky, x+d[0], y+d[1], z+d[2])
		e.relightAt(Block, x+d[0], y+d[1], z+d[2])
	}
}

// reFloodColumnSky re-floods a whole column top-down with 15 minus
// cumulative attenuation, recording newly-lit cells, then relights
// horizontally from each — used both here (sky response to block removal)
// and by Initialize.
func (e *Engine) reFloodColumnSky(x, z int) {
	light := 15
	var seeds [][3]int
	for y := e.grid.H - 1; y >= 0; y-- {
		v := clampInt(light, 0, 15)
		if byte(v) > e.grid.SkyLight(x, y, z) {
			e.setLight(Sky, x, y, z, byte(v))
			seeds = append(seeds, [3]int{x, y, z})
		}
		atten := int(e.grid.Attenuation(x, y, z))
		if atten < 1 {
			atten = 1
		}
		light -= atten
		if light < 0 {
			light = 0
		}
	}
	for _, s := range seeds {
		e.relightAt(Sky, s[0], s[1], s[2])
	}
}

// Initialize seeds lighting after world generation, per spec §4.4.
func (e *Engine) Initialize() {
	for x := 0; x < e.grid.W; x++ {
		for z := 0; z < e.grid.D; z++ {
			e.grid.RecomputeHeightmapPublic(x, z)
			e.reFloodColumnSky(x, z)
		}
	}
	for L := 14; L >= 1; L-- {
		for x := 0; x < e.grid.W; x++ {
			for y := 0; y < e.grid.H; y++ {
				for z := 0; z < e.grid.D; z++ {
					if e.grid.SkyLight(x, y, z) == byte(L) {
						e.relightAt(Sky, x, y, z)
					}
				}
			}
		}
	}
	for x := 0; x < e.grid.W; x++ {
		for y := 0; y < e.grid.H; y++ {
			for z := 0; z < e.grid.D; z++ {
				em := e.grid.Emission(x, y, z)
				if em > 0 {
					e.setLight(Block, x, y, z, em)
				}
			}
		}
	}
	for L := 14; L >= 1; L-- {
		for x := 0; x < e.grid.W; x++ {
			for y := 0; y < e.grid.H; y++ {
				for z := 0; z < e.grid.D; z++ {
					if e.grid.BlockLight(x, y, z) == byte(L) {
						e.relightAt(Block, x, y, z)
					}
				}
			}
		}
	}
}

func (e *Engine) setLight(layer Layer, x, y, z int, v byte) {
	if !e.grid.InBounds(x, y, z) {
		return
	}
	if layer == Sky {
		e.grid.SetSkyLightPublic(x, y, z, v)
	} else {
		e.grid.SetBlockLightPublic(x, y, z, v)
	}
	if e.onLightChanged != nil {
		e.onLightChanged(x, y, z)
	}
}

func (e *Engine) currentLight(layer Layer, x, y, z int) byte {
	if layer == Sky {
		return e.grid.SkyLight(x, y, z)
	}
	return e.grid.BlockLight(x, y, z)
}

func (e *Engine) sourceValue(layer Layer, x, y, z int) byte {
	if layer == Sky {
		if e.grid.SkyLit(x, y, z) {
			return 15
		}
		return 0
	}
	return e.grid.Emission(x, y, z)
}

func (e *Engine) target(layer Layer, x, y, z int) byte {
	best := e.sourceValue(layer, x, y, z)
	for _, d := range neighborOffsets {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if !e.grid.InBounds(nx, ny, nz) {
			continue
		}
		atten := int(e.grid.Attenuation(nx, ny, nz))
		if atten < 1 {
			atten = 1
		}
		candidate := int(e.currentLight(layer, nx, ny, nz)) - atten
		if candidate > int(best) {
			best = byte(candidate)
		}
	}
	if best > 15 {
		best = 15
	}
	return best
}

// relightAt runs bounded BFS re-lighting from a single seed (spec §4.4):
// at each cell recompute target = max(source, max_neighbour-attenuation);
// write on change and enqueue neighbours that might need to rise or fall.
func (e *Engine) relightAt(layer Layer, x, y, z int) {
	if !e.grid.InBounds(x, y, z) {
		return
	}
	type cell struct{ x, y, z int }
	queue := []cell{{x, y, z}}
	visited := make(map[cell]bool, 64)
	visited[cell{x, y, z}] = true

	for len(queue) > 0 {
		if len(visited) > maxVisited {
			if e.log != nil {
				e.log.Warn("relight visit cap exceeded", slog.Int("layer", int(layer)))
			}
			return
		}
		c := queue[0]
		queue = queue[1:]

		if !e.grid.InBounds(c.x, c.y, c.z) {
			continue
		}
		want := e.target(layer, c.x, c.y, c.z)
		cur := e.currentLight(layer, c.x, c.y, c.z)
		if want != cur {
			e.setLight(layer, c.x, c.y, c.z, want)
		}
		for _, d := range neighborOffsets {
			nx, ny, nz := c.x+d[0], c.y+d[1], c.z+d[2]
			nc := cell{nx, ny, nz}
			if visited[nc] || !e.grid.InBounds(nx, ny, nz) {
				continue
			}
			nv := int(e.currentLight(layer, nx, ny, nz))
			if nv < int(want)-1 || nv > int(want) {
				visited[nc] = true
				queue = append(queue, nc)
			}
		}
	}
}

// darknessRemoval runs bounded BFS dark removal from seed with its
// previous value, per spec §4.4.
func (e *Engine) darknessRemoval(layer Layer, x, y, z int, removedValue byte) {
	type entry struct {
		x, y, z int
		val     byte
	}
	type cell struct{ x, y, z int }

	queue := []entry{{x, y, z, removedValue}}
	visited := map[cell]bool{{x, y, z}: true}
	var reseed []cell

	e.setLight(layer, x, y, z, 0)

	for len(queue) > 0 {
		if len(visited) > maxVisited {
			if e.log != nil {
				e.log.Warn("dark removal visit cap exceeded", slog.Int("layer", int(layer)))
			}
			break
		}
		c := queue[0]
		queue = queue[1:]

		for _, d := range neighborOffsets {
			nx, ny, nz := c.x+d[0], c.y+d[1], c.z+d[2]
			if !e.grid.InBounds(nx, ny, nz) {
				continue
			}
			nc := cell{nx, ny, nz}
			if visited[nc] {
				continue
			}
			nv := e.currentLight(layer, nx, ny, nz)
			if nv < c.val {
				visited[nc] = true
				e.setLight(layer, nx, ny, nz, 0)
				queue = append(queue, entry{nx, ny, nz, nv})
			} else if nv >= c.val && nv > 0 {
				reseed = append(reseed, nc)
			}
		}
	}
	for _, s := range reseed {
		e.relightAt(layer, s.x, s.y, s.z)
	}
}

// ProcessUpdates drains up to budget queued rectangles (spec §4.4):
// for each, iterate cells in x,z,y order and only write changed values,
// enqueuing deltas to neighbours, west/down/north always, and
// east/up/south only at the rectangle's edges.
func (e *Engine) ProcessUpdates(budget int) {
	n := budget
	if n > len(e.queue) {
		n = len(e.queue)
	}
	batch := e.queue[:n]
	e.queue = e.queue[n:]

	for _, r := range batch {
		for x := r.MinX; x < r.MaxX; x++ {
			for z := r.MinZ; z < r.MaxZ; z++ {
				for y := r.MinY; y < r.MaxY; y++ {
					want := e.target(r.Layer, x, y, z)
					cur := e.currentLight(r.Layer, x, y, z)
					if want == cur {
						continue
					}
					e.setLight(r.Layer, x, y, z, want)

					e.enqueueCell(r.Layer, x-1, y, z)
					e.enqueueCell(r.Layer, x, y-1, z)
					e.enqueueCell(r.Layer, x, y, z-1)
					if x == r.MaxX-1 {
						e.enqueueCell(r.Layer, x+1, y, z)
					}
					if y == r.MaxY-1 {
						e.enqueueCell(r.Layer, x, y+1, z)
					}
					if z == r.MaxZ-1 {
						e.enqueueCell(r.Layer, x, y, z+1)
					}
				}
			}
		}
	}
}

// Pending reports the number of queued rectangles, used by tests and by
// callers deciding whether to keep calling ProcessUpdates.
func (e *Engine) Pending() int { return len(e.queue) }

// TileChanged, LightChanged and AllChanged let *Engine be registered
// directly as a world.Listener, so a block edit reaches the lighting
// queue without world importing this package.
func (e *Engine) TileChanged(x, y, z int) { e.QueueUpdateAt(x, y, z) }
func (e *Engine) LightChanged(x, y, z int) {}
func (e *Engine) AllChanged()              { e.Initialize() }
