package world

// Grid is the authoritative fixed-dimension World Grid (spec §3, C1):
// four byte-per-cell planes plus a per-column heightmap, addressed by
// index = (y*D + z)*W + x. It replaces the teacher's infinite map of
// per-chunk *Chunk objects (chunk_store.go/chunk.go, deleted) with flat
// byte-plane arrays sized exactly W*H*D, matching the fixed-box data model.
type Grid struct {
	W, H, D int

	blockID    []byte
	metadata   []byte
	skyLight   []byte
	blockLight []byte

	// heightmap[x*D+z] is one above the topmost cell of the column whose
	// attenuation exceeds 1 (air-like kinds have attenuation 1), i.e. the
	// lowest y from which every cell up is non-attenuating, per invariant
	// I5; 0 when the column has no such cell. NewGrid starts every column
	// at H until recomputeHeightmap runs for it.
	heightmap []int32

	kinds *KindTable
}

// NewGrid allocates a grid of the given dimensions. Per spec §3, H must be
// <=128 and all axes multiples of 16; callers violating this get a grid that
// still behaves correctly for addressing, but chunk-aligned consumers
// (meshing, snapshots) assume the multiple-of-16 contract.
func NewGrid(w, h, d int, kinds *KindTable) *Grid {
	n := w * h * d
	g := &Grid{
		W: w, H: h, D: d,
		blockID:    make([]byte, n),
		metadata:   make([]byte, n),
		skyLight:   make([]byte, n),
		blockLight: make([]byte, n),
		heightmap:  make([]int32, w*d),
		kinds:      kinds,
	}
	for i := range g.skyLight {
		g.skyLight[i] = 15
	}
	for i := range g.heightmap {
		g.heightmap[i] = int32(h)
	}
	return g
}

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H && z >= 0 && z < g.D
}

func (g *Grid) index(x, y, z int) int {
	return (y*g.D+z)*g.W + x
}

// BlockID returns the block id at (x,y,z), or Air with no side effects when
// out of bounds (spec §3's "out-of-bounds reads return air").
func (g *Grid) BlockID(x, y, z int) BlockID {
	if !g.InBounds(x, y, z) {
		return Air
	}
	return BlockID(g.blockID[g.index(x, y, z)])
}

func (g *Grid) Metadata(x, y, z int) byte {
	if !g.InBounds(x, y, z) {
		return 0
	}
	return g.metadata[g.index(x, y, z)]
}

// SkyLight returns the sky-light value at (x,y,z); out-of-bounds reads
// return 15 per spec §3.
func (g *Grid) SkyLight(x, y, z int) byte {
	if !g.InBounds(x, y, z) {
		return 15
	}
	return g.skyLight[g.index(x, y, z)]
}

func (g *Grid) BlockLight(x, y, z int) byte {
	if !g.InBounds(x, y, z) {
		return 0
	}
	return g.blockLight[g.index(x, y, z)]
}

// setBlockID/setMetadata/setSkyLight/setBlockLight are the raw cell writers
// used internally by World and by the lighting engine's process_updates;
// they do no bounds checking and no notification — callers must check
// InBounds first.
func (g *Grid) setBlockID(x, y, z int, id BlockID) {
	g.blockID[g.index(x, y, z)] = byte(id)
}

func (g *Grid) setMetadata(x, y, z int, v byte) {
	g.metadata[g.index(x, y, z)] = v
}

func (g *Grid) setSkyLight(x, y, z int, v byte) {
	g.skyLight[g.index(x, y, z)] = v
}

func (g *Grid) setBlockLight(x, y, z int, v byte) {
	g.blockLight[g.index(x, y, z)] = v
}

// Attenuation/Emission read the kind table for the id occupying (x,y,z).
func (g *Grid) Attenuation(x, y, z int) uint8 {
	return g.kinds.Attenuation(g.BlockID(x, y, z))
}

func (g *Grid) Emission(x, y, z int) uint8 {
	return g.kinds.Emission(g.BlockID(x, y, z))
}

// Heightmap returns heightmap[x,z] (see the field comment on Grid);
// out-of-range columns report H.
func (g *Grid) Heightmap(x, z int) int {
	if x < 0 || x >= g.W || z < 0 || z >= g.D {
		return g.H
	}
	return int(g.heightmap[x*g.D+z])
}

func (g *Grid) setHeightmap(x, z, y int) {
	g.heightmap[x*g.D+z] = int32(y)
}

// SkyLit implements the sky-lit predicate from spec §4.4: y>=H is lit,
// y<0 is unlit, otherwise compare against the heightmap.
func (g *Grid) SkyLit(x, y, z int) bool {
	if y >= g.H {
		return true
	}
	if y < 0 {
		return false
	}
	return y >= g.Heightmap(x, z)
}

// SetSkyLightPublic and SetBlockLightPublic let the lighting engine write
// cells without exposing the raw id/metadata writers that must go through
// World's notification path.
func (g *Grid) SetSkyLightPublic(x, y, z int, v byte) {
	if g.InBounds(x, y, z) {
		g.setSkyLight(x, y, z, v)
	}
}

func (g *Grid) SetBlockLightPublic(x, y, z int, v byte) {
	if g.InBounds(x, y, z) {
		g.setBlockLight(x, y, z, v)
	}
}

// RecomputeHeightmapPublic exposes recomputeHeightmap for the lighting
// engine's Initialize pass.
func (g *Grid) RecomputeHeightmapPublic(x, z int) { g.recomputeHeightmap(x, z) }

// recomputeHeightmap rescans a single column from the top, used whenever a
// block edit may have changed the column's attenuation profile. It keeps
// invariant I5 without needing a full-grid rescan.
func (g *Grid) recomputeHeightmap(x, z int) {
	for y := g.H - 1; y >= 0; y-- {
		if g.Attenuation(x, y, z) > 1 {
			g.setHeightmap(x, z, y+1)
			return
		}
	}
	g.setHeightmap(x, z, 0)
}
