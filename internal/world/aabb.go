package world

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space, grounded on the
// teacher's physics package (deleted as player-movement scope, but its
// Min/Max box-intersection shape is kept here since the world grid itself
// needs AABB overlap for may_place/is_unobstructed and the mesher's
// selection boxes).
type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects reports whether a and b overlap on all three axes.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// Translate returns a copy of a offset by d.
func (a AABB) Translate(d mgl32.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

// AtBlock places a's unit-local box at the world position of block (x,y,z).
func (a AABB) AtBlock(x, y, z int) AABB {
	return a.Translate(mgl32.Vec3{float32(x), float32(y), float32(z)})
}

// Empty reports whether the box has zero volume (used for "no selection",
// e.g. air).
func (a AABB) Empty() bool {
	return a.Max.X() <= a.Min.X() || a.Max.Y() <= a.Min.Y() || a.Max.Z() <= a.Min.Z()
}
