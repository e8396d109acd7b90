package meshing

import "voxelcore/internal/world"

// faceDelta gives the local-space offset to the neighbour across a cube
// face, matching world.BlockFace's ordering.
var faceDelta = [6][3]int{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

// layerFor routes a block kind's faces to one of the three mesh layers
// (spec §4.5): opaque cube solids go to Solid, other cube kinds (glass,
// leaves) and liquids to Translucent, every other shape to Cutout. Liquids
// are meshed as a top surface only, so no liquid side faces reach any layer.
func layerFor(a *MeshArtifact, k *world.Kind) *Layer {
	switch k.Shape {
	case world.ShapeCube:
		if !k.Solid {
			return &a.Translucent
		}
		if k.Attenuation < 15 {
			return &a.Translucent
		}
		return &a.Solid
	case world.ShapeLiquid:
		return &a.Translucent
	default:
		return &a.Cutout
	}
}

// buildCell appends the geometry for one snapshot cell (lx,ly,lz) to a.
// Non-cube shapes are parameterised by the cell's metadata byte and, where
// the shape connects to its surroundings (fences, panes, ladders, stacked
// cacti), the adjacent cell's state.
func buildCell(a *MeshArtifact, snap *world.ChunkSnapshot, kinds *world.KindTable, lx, ly, lz int) {
	id := snap.BlockID(lx, ly, lz)
	if id == world.Air {
		return
	}
	k := kinds.Kind(id)
	meta := snap.Metadata(lx, ly, lz)
	switch k.Shape {
	case world.ShapeCube:
		buildCube(a, snap, kinds, k, lx, ly, lz)
	case world.ShapeCross:
		buildCross(a, k, lx, ly, lz)
	case world.ShapeTorch:
		buildTorch(a, snap, k, meta, lx, ly, lz)
	case world.ShapeLiquid:
		buildLiquid(a, snap, kinds, k, lx, ly, lz)
	case world.ShapeCactus:
		buildCactus(a, snap, kinds, k, lx, ly, lz)
	case world.ShapeSlab:
		buildSlab(a, k, meta, lx, ly, lz)
	case world.ShapeStairs:
		buildStairs(a, k, meta, lx, ly, lz)
	case world.ShapeFence, world.ShapePane:
		buildFenceLike(a, snap, k, lx, ly, lz)
	case world.ShapeLadder:
		buildLadder(a, snap, k, meta, lx, ly, lz)
	case world.ShapeDoor:
		buildDoor(a, k, meta, lx, ly, lz)
	case world.ShapeCarpet:
		buildCarpet(a, k, lx, ly, lz)
	case world.ShapeRail:
		buildRail(a, k, meta, lx, ly, lz)
	}
}

func light(snap *world.ChunkSnapshot, lx, ly, lz int) (sky, block uint8) {
	return snap.SkyLight(lx, ly, lz), snap.BlockLight(lx, ly, lz)
}

func buildCube(a *MeshArtifact, snap *world.ChunkSnapshot, kinds *world.KindTable, k *world.Kind, lx, ly, lz int) {
	layer := layerFor(a, k)
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	for face := 0; face < 6; face++ {
		d := faceDelta[face]
		nx, ny, nz := lx+d[0], ly+d[1], lz+d[2]
		if !snap.IsTransparent(nx, ny, nz) {
			continue
		}
		sky, block := light(snap, nx, ny, nz)
		tex := k.FaceTextures[face]
		emitFace(layer, world.BlockFace(face), fx, fy, fz, tex, sky, block)
	}
}

// emitFace appends one unit-cube face as 4 vertices + 6 indices, oriented
// by face. UVs are a flat 0..1 quad; the texture atlas lookup itself is an
// external collaborator (out of core scope).
func emitFace(l *Layer, face world.BlockFace, x, y, z float32, tex uint16, sky, block uint8) {
	var corners [4][3]float32
	switch face {
	case world.FaceEast:
		corners = [4][3]float32{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}
	case world.FaceWest:
		corners = [4][3]float32{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}
	case world.FaceTop:
		corners = [4][3]float32{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}
	case world.FaceBottom:
		corners = [4][3]float32{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}
	case world.FaceNorth:
		corners = [4][3]float32{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}
	case world.FaceSouth:
		corners = [4][3]float32{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}
	}
	uvs := [4][2]float32{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	var v [4]Vertex
	for i := 0; i < 4; i++ {
		v[i] = Vertex{
			X: x + corners[i][0], Y: y + corners[i][1], Z: z + corners[i][2],
			U: uvs[i][0], V: uvs[i][1],
			Color:      0xFFFFFFFF,
			Normal:     uint8(face),
			SkyLight:   sky,
			BlockLight: block,
		}
		_ = tex // texture index would select atlas UV offset externally
	}
	l.quad(v[0], v[1], v[2], v[3])
}

func buildCross(a *MeshArtifact, k *world.Kind, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), uint8(0)
	plane := func(x0, z0, x1, z1 float32) {
		v0 := Vertex{X: fx + x0, Y: fy, Z: fz + z0, U: 0, V: 1, Color: 0xFFFFFFFF, SkyLight: sky, BlockLight: block}
		v1 := Vertex{X: fx + x0, Y: fy + 1, Z: fz + z0, U: 0, V: 0, Color: 0xFFFFFFFF, SkyLight: sky, BlockLight: block}
		v2 := Vertex{X: fx + x1, Y: fy + 1, Z: fz + z1, U: 1, V: 0, Color: 0xFFFFFFFF, SkyLight: sky, BlockLight: block}
		v3 := Vertex{X: fx + x1, Y: fy, Z: fz + z1, U: 1, V: 1, Color: 0xFFFFFFFF, SkyLight: sky, BlockLight: block}
		a.Cutout.quad(v0, v1, v2, v3)
	}
	plane(0, 0, 1, 1)
	plane(1, 0, 0, 1)
}

// buildTorch orients the torch's two side quads by its attachment metadata
// (1=west wall, 2=east wall, 3=north wall, 4=south wall, 5 or default=floor),
// falling back to auto-detecting a supporting solid neighbour in the same
// priority order a placement routine would use when metadata is unset.
func buildTorch(a *MeshArtifact, snap *world.ChunkSnapshot, k *world.Kind, meta byte, lx, ly, lz int) {
	dir := meta & 0x7
	if dir == 0 || dir > 5 {
		switch {
		case !snap.IsTransparent(lx-1, ly, lz):
			dir = 1
		case !snap.IsTransparent(lx+1, ly, lz):
			dir = 2
		case !snap.IsTransparent(lx, ly, lz-1):
			dir = 3
		case !snap.IsTransparent(lx, ly, lz+1):
			dir = 4
		default:
			dir = 5
		}
	}
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	const w = float32(0.15)
	var min, max [3]float32
	switch dir {
	case 1: // west wall, extends east from x=0
		min, max = [3]float32{0, 0.2, 0.5 - w}, [3]float32{w * 2, 0.8, 0.5 + w}
	case 2: // east wall, extends west from x=1
		min, max = [3]float32{1 - w*2, 0.2, 0.5 - w}, [3]float32{1, 0.8, 0.5 + w}
	case 3: // north wall, extends south from z=0
		min, max = [3]float32{0.5 - w, 0.2, 0}, [3]float32{0.5 + w, 0.8, w * 2}
	case 4: // south wall, extends north from z=1
		min, max = [3]float32{0.5 - w, 0.2, 1 - w*2}, [3]float32{0.5 + w, 0.8, 1}
	default: // floor
		const fw = float32(0.1)
		min, max = [3]float32{0.5 - fw, 0, 0.5 - fw}, [3]float32{0.5 + fw, 0.6, 0.5 + fw}
	}
	emitBoxFaces(&a.Cutout, fx, fy, fz, min, max, sky, block, noSkip)
}

func buildLiquid(a *MeshArtifact, snap *world.ChunkSnapshot, kinds *world.KindTable, k *world.Kind, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	top := float32(0.875)
	if !kinds.IsTransparent(snap.BlockID(lx, ly+1, lz)) {
		top = 1.0
	}
	sky, block := light(snap, lx, ly+1, lz)
	v0 := Vertex{X: fx, Y: fy + top, Z: fz, U: 0, V: 0, Color: 0xFFFFFFFF, Normal: uint8(world.FaceTop), SkyLight: sky, BlockLight: block}
	v1 := Vertex{X: fx, Y: fy + top, Z: fz + 1, U: 0, V: 1, Color: 0xFFFFFFFF, Normal: uint8(world.FaceTop), SkyLight: sky, BlockLight: block}
	v2 := Vertex{X: fx + 1, Y: fy + top, Z: fz + 1, U: 1, V: 1, Color: 0xFFFFFFFF, Normal: uint8(world.FaceTop), SkyLight: sky, BlockLight: block}
	v3 := Vertex{X: fx + 1, Y: fy + top, Z: fz, U: 1, V: 0, Color: 0xFFFFFFFF, Normal: uint8(world.FaceTop), SkyLight: sky, BlockLight: block}
	a.Translucent.quad(v0, v1, v2, v3)
}

var noSkip [6]bool

// emitBoxFaces emits up to six faces of an arbitrary axis-aligned box in
// cell-local space, skipping any face flagged in skip (indexed by
// world.BlockFace) so callers can cull faces against neighbour state.
func emitBoxFaces(layer *Layer, fx, fy, fz float32, min, max [3]float32, sky, block uint8, skip [6]bool) {
	mk := func(x, y, z float32) Vertex {
		return Vertex{X: fx + x, Y: fy + y, Z: fz + z, Color: 0xFFFFFFFF, SkyLight: sky, BlockLight: block}
	}
	if !skip[world.FaceEast] {
		layer.quad(mk(max[0], min[1], min[2]), mk(max[0], max[1], min[2]), mk(max[0], max[1], max[2]), mk(max[0], min[1], max[2]))
	}
	if !skip[world.FaceWest] {
		layer.quad(mk(min[0], min[1], max[2]), mk(min[0], max[1], max[2]), mk(min[0], max[1], min[2]), mk(min[0], min[1], min[2]))
	}
	if !skip[world.FaceTop] {
		layer.quad(mk(min[0], max[1], min[2]), mk(min[0], max[1], max[2]), mk(max[0], max[1], max[2]), mk(max[0], max[1], min[2]))
	}
	if !skip[world.FaceBottom] {
		layer.quad(mk(min[0], min[1], max[2]), mk(min[0], min[1], min[2]), mk(max[0], min[1], min[2]), mk(max[0], min[1], max[2]))
	}
	if !skip[world.FaceNorth] {
		layer.quad(mk(max[0], min[1], max[2]), mk(max[0], max[1], max[2]), mk(min[0], max[1], max[2]), mk(min[0], min[1], max[2]))
	}
	if !skip[world.FaceSouth] {
		layer.quad(mk(min[0], min[1], min[2]), mk(min[0], max[1], min[2]), mk(max[0], max[1], min[2]), mk(max[0], min[1], min[2]))
	}
}

func emitBox(layer *Layer, fx, fy, fz float32, min, max [3]float32, sky, block uint8) {
	emitBoxFaces(layer, fx, fy, fz, min, max, sky, block, noSkip)
}

func boxLayer(a *MeshArtifact, k *world.Kind) *Layer {
	if k.Solid {
		return &a.Solid
	}
	return &a.Cutout
}

// buildSlab halves the cell vertically, top or bottom, by metadata bit 0x8
// (the "double slab" high bit in the original tile table).
func buildSlab(a *MeshArtifact, k *world.Kind, meta byte, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	minY, maxY := float32(0), float32(0.5)
	if meta&0x8 != 0 {
		minY, maxY = 0.5, 1
	}
	emitBox(boxLayer(a, k), fx, fy, fz, [3]float32{0, minY, 0}, [3]float32{1, maxY, 1}, sky, block)
}

// buildStairs builds a half-height base plus a quarter-height step whose
// side is picked by metadata's low 2 bits (facing: east/west/south/north).
func buildStairs(a *MeshArtifact, k *world.Kind, meta byte, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	layer := boxLayer(a, k)
	emitBox(layer, fx, fy, fz, [3]float32{0, 0, 0}, [3]float32{1, 0.5, 1}, sky, block)

	var min, max [3]float32
	switch meta & 0x3 {
	case 0: // facing east
		min, max = [3]float32{0.5, 0.5, 0}, [3]float32{1, 1, 1}
	case 1: // facing west
		min, max = [3]float32{0, 0.5, 0}, [3]float32{0.5, 1, 1}
	case 2: // facing south
		min, max = [3]float32{0, 0.5, 0.5}, [3]float32{1, 1, 1}
	default: // facing north
		min, max = [3]float32{0, 0.5, 0}, [3]float32{1, 1, 0.5}
	}
	emitBox(layer, fx, fy, fz, min, max, sky, block)
}

// buildFenceLike emits a thin center post plus one connecting stub per
// horizontal neighbour that is non-transparent (solid), the adjacent-cell
// state a fence/pane consults to decide which sides to connect toward.
func buildFenceLike(a *MeshArtifact, snap *world.ChunkSnapshot, k *world.Kind, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	layer := &a.Cutout
	half := float32(0.0625)
	if k.Shape == world.ShapePane {
		half = 0.03125
	}
	const c = float32(0.5)
	emitBox(layer, fx, fy, fz, [3]float32{c - half, 0, c - half}, [3]float32{c + half, 1, c + half}, sky, block)

	type stub struct {
		dx, dz   int
		min, max [3]float32
	}
	stubs := []stub{
		{1, 0, [3]float32{c, 0.375, c - half}, [3]float32{1, 0.875, c + half}},
		{-1, 0, [3]float32{0, 0.375, c - half}, [3]float32{c, 0.875, c + half}},
		{0, 1, [3]float32{c - half, 0.375, c}, [3]float32{c + half, 0.875, 1}},
		{0, -1, [3]float32{c - half, 0.375, 0}, [3]float32{c + half, 0.875, c}},
	}
	for _, s := range stubs {
		if !snap.IsTransparent(lx+s.dx, ly, lz+s.dz) {
			emitBox(layer, fx, fy, fz, s.min, s.max, sky, block)
		}
	}
}

// buildLadder mounts a thin panel against the wall metadata names (matching
// the torch attachment code: 1=west,2=east,3=north,4=south), auto-detecting
// a supporting solid neighbour when metadata is unset.
func buildLadder(a *MeshArtifact, snap *world.ChunkSnapshot, k *world.Kind, meta byte, lx, ly, lz int) {
	dir := meta & 0x7
	if dir == 0 || dir > 4 {
		switch {
		case !snap.IsTransparent(lx-1, ly, lz):
			dir = 1
		case !snap.IsTransparent(lx+1, ly, lz):
			dir = 2
		case !snap.IsTransparent(lx, ly, lz-1):
			dir = 3
		default:
			dir = 4
		}
	}
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	const w = float32(0.0625)
	var min, max [3]float32
	switch dir {
	case 1:
		min, max = [3]float32{0, 0, 0}, [3]float32{w, 1, 1}
	case 2:
		min, max = [3]float32{1 - w, 0, 0}, [3]float32{1, 1, 1}
	case 3:
		min, max = [3]float32{0, 0, 0}, [3]float32{1, 1, w}
	default:
		min, max = [3]float32{0, 0, 1 - w}, [3]float32{1, 1, 1}
	}
	emitBox(&a.Cutout, fx, fy, fz, min, max, sky, block)
}

// buildDoor picks a thin panel axis from metadata's facing bits (0x3),
// rotated 90 degrees when the open bit (0x4) is set.
func buildDoor(a *MeshArtifact, k *world.Kind, meta byte, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	const w = float32(0.1875)
	thinOnZ := meta&0x3 == 0 || meta&0x3 == 2
	if meta&0x4 != 0 {
		thinOnZ = !thinOnZ
	}
	var min, max [3]float32
	if thinOnZ {
		min, max = [3]float32{0, 0, 0}, [3]float32{1, 1, w}
	} else {
		min, max = [3]float32{0, 0, 0}, [3]float32{w, 1, 1}
	}
	emitBox(&a.Cutout, fx, fy, fz, min, max, sky, block)
}

// buildCarpet is a full-footprint sliver; unlike the other box shapes its
// geometry carries no metadata dependence (only a dye variant would, which
// is a texture concern external to this builder).
func buildCarpet(a *MeshArtifact, k *world.Kind, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	emitBox(&a.Cutout, fx, fy, fz, [3]float32{0, 0, 0}, [3]float32{1, 0.0625, 1}, sky, block)
}

// buildRail reads metadata the way a rail tile's data byte is conventionally
// laid out: 0-1 flat straight, 2-5 an ascending slope toward one of the four
// cardinal directions (modelled as two offset flat boxes), 6-9 curves
// (folded back to flat straight; curve footprints are out of scope here).
func buildRail(a *MeshArtifact, k *world.Kind, meta byte, lx, ly, lz int) {
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), k.Emission
	layer := &a.Cutout
	const thick = float32(0.0625)

	if meta >= 2 && meta <= 5 {
		var lowMin, lowMax, highMin, highMax [3]float32
		switch meta {
		case 2: // ascends to the east
			lowMin, lowMax = [3]float32{0, 0, 0}, [3]float32{0.5, thick, 1}
			highMin, highMax = [3]float32{0.5, 1 - thick, 0}, [3]float32{1, 1, 1}
		case 3: // ascends to the west
			lowMin, lowMax = [3]float32{0.5, 0, 0}, [3]float32{1, thick, 1}
			highMin, highMax = [3]float32{0, 1 - thick, 0}, [3]float32{0.5, 1, 1}
		case 4: // ascends to the south
			lowMin, lowMax = [3]float32{0, 0, 0}, [3]float32{1, thick, 0.5}
			highMin, highMax = [3]float32{0, 1 - thick, 0.5}, [3]float32{1, 1, 1}
		default: // ascends to the north
			lowMin, lowMax = [3]float32{0, 0, 0.5}, [3]float32{1, thick, 1}
			highMin, highMax = [3]float32{0, 1 - thick, 0}, [3]float32{1, 1, 0.5}
		}
		emitBox(layer, fx, fy, fz, lowMin, lowMax, sky, block)
		emitBox(layer, fx, fy, fz, highMin, highMax, sky, block)
		return
	}
	emitBox(layer, fx, fy, fz, [3]float32{0, 0, 0}, [3]float32{1, thick, 1}, sky, block)
}

// buildCactus insets its sides and, via the adjacent-cell state of the
// blocks directly above/below, skips the top/bottom faces when stacked on
// another cactus so the shared seam isn't meshed twice.
func buildCactus(a *MeshArtifact, snap *world.ChunkSnapshot, kinds *world.KindTable, k *world.Kind, lx, ly, lz int) {
	const inset = float32(0.0625)
	fx, fy, fz := float32(lx), float32(ly), float32(lz)
	sky, block := uint8(15), uint8(0)
	skip := noSkip
	if kinds.Kind(snap.BlockID(lx, ly+1, lz)).Shape == world.ShapeCactus {
		skip[world.FaceTop] = true
	}
	if kinds.Kind(snap.BlockID(lx, ly-1, lz)).Shape == world.ShapeCactus {
		skip[world.FaceBottom] = true
	}
	emitBoxFaces(&a.Cutout, fx, fy, fz, [3]float32{inset, 0, inset}, [3]float32{1 - inset, 1, 1 - inset}, sky, block, skip)
}
