package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipResult is the outcome of a Clip raycast: the hit cell, the face
// entered through, and the world-space hit point. Hit is false on a miss.
type ClipResult struct {
	Hit      bool
	X, Y, Z  int
	Face     BlockFace
	Point    mgl32.Vec3
}

// Clip performs a 3D DDA raycast from start to end, consulting each block
// kind's selection AABB for non-cube shapes, per spec §4.1. stopOnLiquid
// makes a liquid cell count as a hit instead of being passed through.
func (w *World) Clip(start, end mgl32.Vec3, stopOnLiquid bool) ClipResult {
	dir := end.Sub(start)
	length := dir.Len()
	if length < 1e-6 {
		return ClipResult{}
	}
	dir = dir.Mul(1 / length)

	x, y, z := int(math.Floor(float64(start.X()))), int(math.Floor(float64(start.Y()))), int(math.Floor(float64(start.Z())))

	stepX, tDeltaX, tMaxX := ddaAxis(start.X(), dir.X())
	stepY, tDeltaY, tMaxY := ddaAxis(start.Y(), dir.Y())
	stepZ, tDeltaZ, tMaxZ := ddaAxis(start.Z(), dir.Z())

	var face BlockFace
	t := float32(0)

	for t <= length {
		id := w.Grid.BlockID(x, y, z)
		k := w.Kinds.Kind(id)
		isLiquid := k.Shape == ShapeLiquid
		if !k.Selection.Empty() && (k.Solid || (isLiquid && stopOnLiquid)) {
			point := start.Add(dir.Mul(t))
			if boxContainsOrNear(k.Selection.AtBlock(x, y, z), point, dir) {
				return ClipResult{Hit: true, X: x, Y: y, Z: z, Face: face, Point: point}
			}
		}

		if tMaxX < tMaxY && tMaxX < tMaxZ {
			x += stepX
			t = tMaxX
			tMaxX += tDeltaX
			if stepX > 0 {
				face = FaceWest
			} else {
				face = FaceEast
			}
		} else if tMaxY < tMaxZ {
			y += stepY
			t = tMaxY
			tMaxY += tDeltaY
			if stepY > 0 {
				face = FaceBottom
			} else {
				face = FaceTop
			}
		} else {
			z += stepZ
			t = tMaxZ
			tMaxZ += tDeltaZ
			if stepZ > 0 {
				face = FaceSouth
			} else {
				face = FaceNorth
			}
		}
	}
	return ClipResult{}
}

// boxContainsOrNear treats a point that lands inside box, or within one
// DDA step of it along dir, as a hit; cheap substitute for a full
// ray/box-intersection since DDA already walks cell-by-cell.
func boxContainsOrNear(box AABB, point mgl32.Vec3, dir mgl32.Vec3) bool {
	const eps = 1e-3
	// Slab test over the segment from point to one cell diagonal along dir,
	// the farthest a single DDA step can carry the ray.
	tMin, tMax := float32(0), float32(math.Sqrt(3))
	for i := 0; i < 3; i++ {
		lo, hi := box.Min[i]-eps-point[i], box.Max[i]+eps-point[i]
		if dir[i] == 0 {
			if lo > 0 || hi < 0 {
				return false
			}
			continue
		}
		t1, t2 := lo/dir[i], hi/dir[i]
		tMin, tMax = max(tMin, min(t1, t2)), min(tMax, max(t1, t2))
	}
	return tMin <= tMax
}

func ddaAxis(origin, d float32) (step int, tDelta, tMax float32) {
	if d > 0 {
		step = 1
		tDelta = 1 / d
		tMax = (float32(math.Floor(float64(origin))+1) - origin) * tDelta
	} else if d < 0 {
		step = -1
		tDelta = 1 / -d
		tMax = (origin - float32(math.Floor(float64(origin)))) * tDelta
	} else {
		step = 0
		tDelta = float32(math.Inf(1))
		tMax = float32(math.Inf(1))
	}
	return
}
