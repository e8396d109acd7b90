package world

import "github.com/go-gl/mathgl/mgl32"

// BlockID identifies a block kind. 0 is always air.
type BlockID uint8

const Air BlockID = 0

// Shape is the render-shape tag for a block kind, replacing the teacher's
// per-block virtual dispatch (registry.BlockDefinition) with a fixed tag plus
// a per-id data table, per Design Notes: "Replace with a tagged variant
// 'block shape' ... + a fixed per-id data table."
type Shape uint8

const (
	ShapeCube Shape = iota
	ShapeCross
	ShapeTorch
	ShapeLiquid
	ShapeCactus
	ShapeSlab
	ShapeStairs
	ShapeFence
	ShapeDoor
	ShapePane
	ShapeLadder
	ShapeCarpet
	ShapeRail
)

// BlockFace identifies one of the six cube faces.
type BlockFace uint8

const (
	FaceEast BlockFace = iota
	FaceWest
	FaceTop
	FaceBottom
	FaceNorth
	FaceSouth
)

var faceNormals = [6]mgl32.Vec3{
	FaceEast:   {1, 0, 0},
	FaceWest:   {-1, 0, 0},
	FaceTop:    {0, 1, 0},
	FaceBottom: {0, -1, 0},
	FaceNorth:  {0, 0, 1},
	FaceSouth:  {0, 0, -1},
}

// Kind describes one entry of the fixed, at-most-256-row block kind table
// (spec.md §3, "Block kind table").
type Kind struct {
	Name            string
	Shape           Shape
	Solid           bool
	Attenuation     uint8 // 0-15, default 1 for air-like, 15 for fully opaque
	Emission        uint8 // 0-15
	Friction        float32
	FaceTextures    [6]uint16
	WantsRandomTick bool
	BlocksBuilding  bool
	// Selection is the non-cube selection/collision AABB in local (0..1)
	// block space, consulted by Clip and MayPlace for non-cube shapes
	// (torch, cross, slab, ...). Cube kinds use the unit box implicitly.
	Selection AABB
}

// unitSelection is the default full-block selection box used by cube-shaped
// and any kind that doesn't declare a narrower Selection.
var unitSelection = AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}

// KindTable is the fixed table of up to 256 block kinds, indexed by BlockID.
type KindTable struct {
	kinds [256]Kind
	byName map[string]BlockID
}

// NewKindTable builds a table pre-populated with air and a small default
// palette exercising every shape tag, grounded on the teacher's
// registry.InitRegistry but expanded with the attributes spec.md's Block
// kind table requires (attenuation, emission, friction, shape, flags).
func NewKindTable() *KindTable {
	t := &KindTable{byName: make(map[string]BlockID)}
	t.register(Air, Kind{
		Name:        "air",
		Shape:       ShapeCube,
		Solid:       false,
		Attenuation: 1,
		Selection:   AABB{},
	})
	t.register(1, Kind{Name: "stone", Shape: ShapeCube, Solid: true, Attenuation: 15, BlocksBuilding: true, Friction: 0.6, Selection: unitSelection})
	t.register(2, Kind{Name: "dirt", Shape: ShapeCube, Solid: true, Attenuation: 15, BlocksBuilding: true, Friction: 0.6, Selection: unitSelection})
	t.register(3, Kind{Name: "grass", Shape: ShapeCube, Solid: true, Attenuation: 15, BlocksBuilding: true, Friction: 0.6, Selection: unitSelection})
	t.register(4, Kind{Name: "glass", Shape: ShapeCube, Solid: true, Attenuation: 1, BlocksBuilding: true, Friction: 0.6, Selection: unitSelection})
	t.register(5, Kind{Name: "leaves", Shape: ShapeCube, Solid: true, Attenuation: 2, BlocksBuilding: true, WantsRandomTick: true, Friction: 0.6, Selection: unitSelection})
	t.register(6, Kind{Name: "torch", Shape: ShapeTorch, Solid: false, Attenuation: 1, Emission: 14, Friction: 0.6,
		Selection: AABB{Min: mgl32.Vec3{0.375, 0, 0.375}, Max: mgl32.Vec3{0.625, 0.6, 0.625}}})
	t.register(7, Kind{Name: "lava", Shape: ShapeLiquid, Solid: false, Attenuation: 3, Emission: 15, Friction: 0.6, Selection: unitSelection})
	t.register(8, Kind{Name: "water", Shape: ShapeLiquid, Solid: false, Attenuation: 2, Friction: 0.6, Selection: unitSelection})
	t.register(9, Kind{Name: "sapling", Shape: ShapeCross, Solid: false, Attenuation: 1, WantsRandomTick: true,
		Selection: AABB{Min: mgl32.Vec3{0.1, 0, 0.1}, Max: mgl32.Vec3{0.9, 0.8, 0.9}}})
	t.register(10, Kind{Name: "cactus", Shape: ShapeCactus, Solid: true, Attenuation: 15, BlocksBuilding: true, Friction: 0.6,
		Selection: AABB{Min: mgl32.Vec3{0.0625, 0, 0.0625}, Max: mgl32.Vec3{0.9375, 1, 0.9375}}})
	t.register(11, Kind{Name: "slab", Shape: ShapeSlab, Solid: true, Attenuation: 15, BlocksBuilding: true, Friction: 0.6,
		Selection: AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 0.5, 1}}})
	t.register(12, Kind{Name: "glowstone", Shape: ShapeCube, Solid: true, Attenuation: 15, Emission: 15, BlocksBuilding: true, Friction: 0.6, Selection: unitSelection})
	t.register(13, Kind{Name: "fence", Shape: ShapeFence, Solid: true, Attenuation: 1, BlocksBuilding: true, Friction: 0.6,
		Selection: AABB{Min: mgl32.Vec3{0.375, 0, 0.375}, Max: mgl32.Vec3{0.625, 1.5, 0.625}}})
	t.register(14, Kind{Name: "ladder", Shape: ShapeLadder, Solid: false, Attenuation: 1, Friction: 0.6,
		Selection: AABB{Min: mgl32.Vec3{0, 0, 0.875}, Max: mgl32.Vec3{1, 1, 1}}})
	return t
}

func (t *KindTable) register(id BlockID, k Kind) {
	if k.Attenuation == 0 && id != Air {
		k.Attenuation = 1
	}
	if k.Selection == (AABB{}) && k.Shape == ShapeCube {
		k.Selection = unitSelection
	}
	t.kinds[id] = k
	t.byName[k.Name] = id
}

// Register installs or overwrites a custom kind at id, for embedders that
// want their own block palette instead of the default one.
func (t *KindTable) Register(id BlockID, k Kind) { t.register(id, k) }

func (t *KindTable) Kind(id BlockID) *Kind { return &t.kinds[id] }

func (t *KindTable) ByName(name string) (BlockID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Attenuation returns the light attenuation for id, defaulting to 1 for any
// unregistered id (treated as air-like) per spec.md §3's default.
func (t *KindTable) Attenuation(id BlockID) uint8 {
	if a := t.kinds[id].Attenuation; a > 0 {
		return a
	}
	return 1
}

// Emission returns the light emission for id.
func (t *KindTable) Emission(id BlockID) uint8 { return t.kinds[id].Emission }

// IsTransparent reports whether id lets light/faces pass for culling
// purposes: true when the kind is non-solid (cube kinds) or any non-cube
// shape, matching the mesher's is_transparent helper (spec.md §4.2, §4.5).
func (t *KindTable) IsTransparent(id BlockID) bool {
	k := &t.kinds[id]
	if k.Shape != ShapeCube {
		return true
	}
	return !k.Solid
}

func (t *KindTable) BlocksBuilding(id BlockID) bool { return t.kinds[id].BlocksBuilding }
