package world

import "math"

// BlockSnapshot is an immutable rectangular copy of block ids only
// (spec §3/§4.3, C3), used by the pathfinder so workers never touch C1
// directly (invariant I4).
type BlockSnapshot struct {
	MinX, MinZ int
	SizeX, SizeZ, H int
	ids []byte
}

// SnapshotRadius returns the capture radius for a given max search
// distance, per spec §4.3: ceil(max_search_distance)+4.
func SnapshotRadius(maxSearchDistance float64) int {
	return int(math.Ceil(maxSearchDistance)) + 4
}

// CaptureBlockSnapshot copies block ids over [cx-r,cx+r] x [0,H) x [cz-r,cz+r].
func CaptureBlockSnapshot(g *Grid, cx, cz, r int) *BlockSnapshot {
	size := 2*r + 1
	s := &BlockSnapshot{
		MinX: cx - r, MinZ: cz - r,
		SizeX: size, SizeZ: size, H: g.H,
		ids: make([]byte, size*g.H*size),
	}
	for ly := 0; ly < g.H; ly++ {
		for lz := 0; lz < size; lz++ {
			wz := s.MinZ + lz
			for lx := 0; lx < size; lx++ {
				wx := s.MinX + lx
				if g.InBounds(wx, ly, wz) {
					s.ids[s.index(lx, ly, lz)] = byte(g.BlockID(wx, ly, wz))
				}
			}
		}
	}
	return s
}

func (s *BlockSnapshot) index(lx, ly, lz int) int {
	return (ly*s.SizeZ+lz)*s.SizeX + lx
}

// BlockID returns the block id at world coordinates (x,y,z); out-of-range
// reads return air, per spec §3.
func (s *BlockSnapshot) BlockID(x, y, z int) BlockID {
	lx := x - s.MinX
	lz := z - s.MinZ
	if lx < 0 || lx >= s.SizeX || y < 0 || y >= s.H || lz < 0 || lz >= s.SizeZ {
		return Air
	}
	return BlockID(s.ids[s.index(lx, y, lz)])
}
