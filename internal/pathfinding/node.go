package pathfinding

// packKey packs a grid cell into the 30-bit key described in spec §3/§4.6:
// x | (y<<10) | (z<<20). FindPath passes world coordinates, and y goes
// below 0 where a search drops off the world's edge, so each coordinate is
// masked to its low 10 bits; keys stay unique while the cells one search
// visits span fewer than 1024 values on each axis.
func packKey(x, y, z int) int64 {
	return int64(x&0x3FF) | int64(y&0x3FF)<<10 | int64(z&0x3FF)<<20
}

// node is an A* search node. heapIndex is -1 when not in the open set;
// closed marks a node that has left the open set permanently.
type node struct {
	x, y, z   int
	g, h, f   float64
	parent    *node
	heapIndex int
	closed    bool
}
