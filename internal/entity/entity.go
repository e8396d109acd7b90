// Package entity models the small amount of entity state the core cares
// about: identity, collision bounds, and whether an entity blocks
// placement — everything else (models, rendering, AI behaviour) is an
// external collaborator per spec's Non-goals.
package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxelcore/internal/world"
)

// Handle is a non-owning reference to an entity: just its id, never a
// pointer into whatever owns the full entity list, per Design Notes'
// "back-references... model as non-owning handles".
type Handle struct {
	ID uuid.UUID
}

// Entity is the minimal state the core subsystems need from a mob/object:
// its position and full width/height (for world.Occupant and pathfinder
// bounding boxes) and whether it blocks building.
type Entity struct {
	Handle
	Position       mgl32.Vec3
	Width, Height  float32
	BlocksBuilding bool
	dead           bool

	// Path holds the most recent path drained for this entity from the
	// async pathfinder, as a sequence of block coordinates; nil until a
	// request completes.
	Path [][3]int
}

func New(width, height float32, blocksBuilding bool) *Entity {
	return &Entity{
		Handle:         Handle{ID: uuid.New()},
		Width:          width,
		Height:         height,
		BlocksBuilding: blocksBuilding,
	}
}

func (e *Entity) IsDead() bool { return e.dead }
func (e *Entity) SetDead()     { e.dead = true }

// Bounds returns the entity's world-space AABB centered under Position.
func (e *Entity) Bounds() world.AABB {
	hw := e.Width / 2
	return world.AABB{
		Min: mgl32.Vec3{e.Position.X() - hw, e.Position.Y(), e.Position.Z() - hw},
		Max: mgl32.Vec3{e.Position.X() + hw, e.Position.Y() + e.Height, e.Position.Z() + hw},
	}
}

// Registry is the owning table of live entities; World only ever sees
// Occupant snapshots derived from it, never Registry itself, keeping the
// dependency one-directional (entity depends on world, not the reverse).
type Registry struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Entity
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[uuid.UUID]*Entity)}
}

func (r *Registry) Add(e *Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[e.ID] = e
}

func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

func (r *Registry) Get(id uuid.UUID) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Each calls fn for every live entity. fn may mutate the entity in place
// (e.g. to record a drained path) but must not call back into Registry.
func (r *Registry) Each(fn func(*Entity)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.byID {
		if !e.dead {
			fn(e)
		}
	}
}

// SyncOccupants pushes every live, non-dead entity's current bounds into w
// as an Occupant, so world.MayPlace/IsUnobstructed see up-to-date boxes.
// Called once per tick by whatever drives entity movement.
func (r *Registry) SyncOccupants(w *world.World) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, e := range r.byID {
		if e.dead {
			w.RemoveOccupant(id)
			continue
		}
		w.SetOccupant(world.Occupant{ID: id, Bounds: e.Bounds(), BlocksBuilding: e.BlocksBuilding})
	}
}

// BoundingBoxForPath returns the (width, height) pair the pathfinder's
// is_free box sizing expects (spec §4.6's bb_width/bb_height).
func (e *Entity) BoundingBoxForPath() (float64, float64) {
	return float64(e.Width), float64(e.Height)
}
