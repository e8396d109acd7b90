package world

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Occupant is a non-owning handle to something that can block building —
// an entity's id plus its current collision box — tracked by World so
// MayPlace/IsUnobstructed can answer without importing the entity package
// back (Design Notes: "non-owning handles... breaks reference cycles
// without reference counting").
type Occupant struct {
	ID             uuid.UUID
	Bounds         AABB
	BlocksBuilding bool
}

// World is the authoritative World Grid (C1) plus the edit surface named
// in spec §6's World API. It is the sole mutator of the grid; mesh and
// pathfinder workers never hold a *World, only the snapshots it captures.
type World struct {
	Grid *Grid
	Kinds *KindTable

	log *slog.Logger

	listenersMu sync.RWMutex
	listeners   []Listener

	occupantsMu sync.RWMutex
	occupants   map[uuid.UUID]Occupant
}

// New builds a World of the given dimensions with the given block kind
// table and logger (nil logger disables logging, matching the teacher's
// optional-logger convention).
func New(w, h, d int, kinds *KindTable, log *slog.Logger) *World {
	return &World{
		Grid:      NewGrid(w, h, d, kinds),
		Kinds:     kinds,
		log:       log,
		occupants: make(map[uuid.UUID]Occupant),
	}
}

func (w *World) GetTile(x, y, z int) BlockID { return w.Grid.BlockID(x, y, z) }
func (w *World) GetData(x, y, z int) byte    { return w.Grid.Metadata(x, y, z) }

// SetTile writes a new block id at (x,y,z), recomputes the column
// heightmap, and fires notify_tile_changed. Out-of-bounds writes are
// silently ignored (spec §7 OutOfBounds: never fatal).
func (w *World) SetTile(x, y, z int, id BlockID) {
	w.SetTileData(x, y, z, id, 0)
}

func (w *World) SetTileData(x, y, z int, id BlockID, meta byte) {
	if !w.Grid.InBounds(x, y, z) {
		return
	}
	w.Grid.setBlockID(x, y, z, id)
	w.Grid.setMetadata(x, y, z, meta)
	w.Grid.recomputeHeightmap(x, z)
	w.notifyTileChanged(x, y, z)
	if w.log != nil {
		w.log.Debug("tile set", slog.Int("x", x), slog.Int("y", y), slog.Int("z", z), slog.Int("id", int(id)))
	}
}

func (w *World) SetData(x, y, z int, meta byte) {
	if !w.Grid.InBounds(x, y, z) {
		return
	}
	w.Grid.setMetadata(x, y, z, meta)
	w.notifyTileChanged(x, y, z)
}

// NotifyTileChanged fires the listener chain without mutating the grid —
// used when a caller edits metadata through a path that already wrote the
// cell and only needs the side effects (mesher dirty-set, lighting queue).
func (w *World) NotifyTileChanged(x, y, z int) {
	w.notifyTileChanged(x, y, z)
}

// NotifyLightChanged is called by the lighting engine after it writes a
// cell's light value, so the mesher's dirty-set also reacts to pure light
// changes (no id/metadata edit).
func (w *World) NotifyLightChanged(x, y, z int) {
	w.notifyLightChanged(x, y, z)
}

// SetOccupant installs or updates a non-owning occupant handle, called by
// whatever owns entities (outside the core) whenever one moves or changes
// bounds.
func (w *World) SetOccupant(o Occupant) {
	w.occupantsMu.Lock()
	defer w.occupantsMu.Unlock()
	w.occupants[o.ID] = o
}

func (w *World) RemoveOccupant(id uuid.UUID) {
	w.occupantsMu.Lock()
	defer w.occupantsMu.Unlock()
	delete(w.occupants, id)
}

// MayPlace rejects placement of kind at (x,y,z) when any entity marked
// blocks-building overlaps the kind's collision AABB, per spec §4.1.
// ignore is an occupant id to exclude from the check (typically the
// entity performing the placement).
func (w *World) MayPlace(kind BlockID, x, y, z int, ignore uuid.UUID) bool {
	k := w.Kinds.Kind(kind)
	if k.Selection.Empty() {
		return true
	}
	box := k.Selection.AtBlock(x, y, z)
	w.occupantsMu.RLock()
	defer w.occupantsMu.RUnlock()
	for _, o := range w.occupants {
		if !o.BlocksBuilding || o.ID == ignore {
			continue
		}
		if o.Bounds.Intersects(box) {
			return false
		}
	}
	return true
}

// IsUnobstructed reports whether aabb overlaps no solid block cell.
func (w *World) IsUnobstructed(aabb AABB) bool {
	minX := int(floor(aabb.Min.X()))
	minY := int(floor(aabb.Min.Y()))
	minZ := int(floor(aabb.Min.Z()))
	maxX := int(ceilf(aabb.Max.X()))
	maxY := int(ceilf(aabb.Max.Y()))
	maxZ := int(ceilf(aabb.Max.Z()))
	for y := minY; y < maxY; y++ {
		for z := minZ; z < maxZ; z++ {
			for x := minX; x < maxX; x++ {
				id := w.Grid.BlockID(x, y, z)
				k := w.Kinds.Kind(id)
				if !k.Solid {
					continue
				}
				if k.Selection.AtBlock(x, y, z).Intersects(aabb) {
					return false
				}
			}
		}
	}
	return true
}

func floor(v float32) float32 {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return float32(i)
}

func ceilf(v float32) float32 {
	i := int(v)
	if v > 0 && float32(i) != v {
		i++
	}
	return float32(i)
}
