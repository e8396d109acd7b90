package pathfinding

import (
	"math"

	"github.com/brentp/intintmap"

	"voxelcore/internal/world"
)

// nodeTable maps the packed 30-bit (x,y,z) key to a node, grounded on
// intintmap's packed-int-key map: the map holds an index into nodes, since
// intintmap stores int64 values rather than pointers.
type nodeTable struct {
	index *intintmap.Map
	nodes []*node
}

func newNodeTable() *nodeTable {
	return &nodeTable{index: intintmap.New(1024, 0.75)}
}

func (t *nodeTable) get(key int64) (*node, bool) {
	idx, ok := t.index.Get(key)
	if !ok {
		return nil, false
	}
	return t.nodes[idx], true
}

func (t *nodeTable) getOrCreate(key int64, x, y, z int) *node {
	if n, ok := t.get(key); ok {
		return n
	}
	n := &node{x: x, y: y, z: z, heapIndex: -1}
	t.index.Put(key, int64(len(t.nodes)))
	t.nodes = append(t.nodes, n)
	return n
}

// isFree reports the box occupancy at (x,y,z) sized sizeX*sizeY*sizeZ:
// 1 if every cell is non-solid, 0 if any is solid, -1 if any is liquid
// (liquid short-circuits the caller through get_node), per spec §4.6.
func isFree(snap *world.BlockSnapshot, kinds *world.KindTable, x, y, z, sizeX, sizeY, sizeZ int) int {
	sawLiquid := false
	for dy := 0; dy < sizeY; dy++ {
		for dz := 0; dz < sizeZ; dz++ {
			for dx := 0; dx < sizeX; dx++ {
				id := snap.BlockID(x+dx, y+dy, z+dz)
				k := kinds.Kind(id)
				if k.Shape == world.ShapeLiquid {
					sawLiquid = true
					continue
				}
				if k.Solid {
					return 0
				}
			}
		}
	}
	if sawLiquid {
		return -1
	}
	return 1
}

const maxStepDown = 4

// getNode resolves the neighbour cell actually occupiable starting from
// (x,y,z): tries y, then y+stepUp (a 1-block step-up), then drops down
// through up to 4 free cells, stopping (with no neighbour) if it meets
// liquid along the way.
func getNode(snap *world.BlockSnapshot, kinds *world.KindTable, x, y, z, stepUp, sizeX, sizeY, sizeZ int) (int, int, int, bool) {
	cy := y
	switch isFree(snap, kinds, x, y, z, sizeX, sizeY, sizeZ) {
	case 1:
		cy = y
	default:
		if stepUp > 0 && isFree(snap, kinds, x, y+stepUp, z, sizeX, sizeY, sizeZ) == 1 {
			cy = y + stepUp
		} else {
			return 0, 0, 0, false
		}
	}
	for drop := 0; drop < maxStepDown; drop++ {
		below := isFree(snap, kinds, x, cy-1, z, sizeX, sizeY, sizeZ)
		if below == -1 {
			return 0, 0, 0, false
		}
		if below != 1 {
			break
		}
		cy--
	}
	return x, cy, z, true
}

func euclid(x1, y1, z1, x2, y2, z2 int) float64 {
	dx := float64(x1 - x2)
	dy := float64(y1 - y2)
	dz := float64(z1 - z2)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

var cardinal = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// FindPath runs A* over snap from start to target for an entity of the
// given bounding box, per spec §4.6. It returns the path (possibly to the
// closest node reached, not the goal) and whether any path at all could be
// produced: false, with a nil path, when no node nearer to target than
// start itself was reached.
func FindPath(snap *world.BlockSnapshot, kinds *world.KindTable, start, target [3]int, bbWidth, bbHeight float64, maxDistance float64) ([][3]int, bool) {
	sizeX := int(bbWidth + 1)
	sizeY := int(bbHeight + 1)
	sizeZ := int(bbWidth + 1)
	if sizeX < 1 {
		sizeX = 1
	}
	if sizeY < 1 {
		sizeY = 1
	}
	if sizeZ < 1 {
		sizeZ = 1
	}

	table := newNodeTable()
	startKey := packKey(start[0], start[1], start[2])
	startNode := table.getOrCreate(startKey, start[0], start[1], start[2])
	startNode.g = 0
	startNode.h = euclid(start[0], start[1], start[2], target[0], target[1], target[2])
	startNode.f = startNode.h

	open := &openHeap{}
	open.push(startNode)

	closest := startNode
	closestDist := startNode.h

	for open.Len() > 0 {
		cur := open.pop()
		if cur.closed {
			continue
		}
		cur.closed = true

		if cur.h < closestDist {
			closest = cur
			closestDist = cur.h
		}
		if cur.x == target[0] && cur.y == target[1] && cur.z == target[2] {
			return reconstruct(cur, sizeX, sizeZ), true
		}

		aboveFree := isFree(snap, kinds, cur.x, cur.y+sizeY, cur.z, sizeX, 1, sizeZ) == 1
		stepUp := 0
		if aboveFree {
			stepUp = 1
		}

		for _, d := range cardinal {
			nx, nz := cur.x+d[0], cur.z+d[1]
			gx, gy, gz, ok := getNode(snap, kinds, nx, cur.y, nz, stepUp, sizeX, sizeY, sizeZ)
			if !ok {
				continue
			}
			dist := euclid(gx, gy, gz, target[0], target[1], target[2])
			if maxDistance > 0 && dist >= maxDistance {
				continue
			}
			key := packKey(gx, gy, gz)
			nb := table.getOrCreate(key, gx, gy, gz)
			if nb.closed {
				continue
			}
			stepCost := euclid(cur.x, cur.y, cur.z, gx, gy, gz)
			tentativeG := cur.g + stepCost
			if nb.heapIndex == -1 && nb.parent == nil && nb != startNode {
				nb.g = tentativeG
				nb.h = dist
				nb.f = nb.g + nb.h
				nb.parent = cur
				open.push(nb)
			} else if tentativeG < nb.g {
				nb.g = tentativeG
				nb.f = nb.g + nb.h
				nb.parent = cur
				open.changeCost(nb)
			}
		}
	}

	if closest == startNode {
		return nil, false
	}
	return reconstruct(closest, sizeX, sizeZ), true
}

// reconstruct follows parent links from goal/closest back to start and
// reverses them, centering each waypoint by size/2 via integer division
// (spec §4.6 Open Question: the bias is preserved, not eliminated).
func reconstruct(n *node, sizeX, sizeZ int) [][3]int {
	var rev [][3]int
	for c := n; c != nil; c = c.parent {
		rev = append(rev, [3]int{c.x + sizeX/2, c.y, c.z + sizeZ/2})
	}
	out := make([][3]int, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}
