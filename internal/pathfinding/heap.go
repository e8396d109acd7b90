package pathfinding

// openHeap is a custom binary min-heap over *node by f-score, supporting
// decrease-key via changeCost, matching the hand-rolled heap spec §4.6
// describes (not container/heap, since nodes need to know their own
// position to support O(log n) key decreases instead of a linear scan).
type openHeap struct {
	items []*node
}

func (h *openHeap) Len() int { return len(h.items) }

func (h *openHeap) push(n *node) {
	n.heapIndex = len(h.items)
	h.items = append(h.items, n)
	h.siftUp(n.heapIndex)
}

func (h *openHeap) pop() *node {
	top := h.items[0]
	last := len(h.items) - 1
	h.items[0] = h.items[last]
	h.items[0].heapIndex = 0
	h.items = h.items[:last]
	top.heapIndex = -1
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return top
}

// changeCost moves n toward the root after its f has dropped; if f rose
// instead, sifts it down. Called "decrease-key" in spec §4.6 but handled
// symmetrically here since re-expansion can also raise f.
func (h *openHeap) changeCost(n *node) {
	if n.heapIndex < 0 {
		return
	}
	if !h.siftUp(n.heapIndex) {
		h.siftDown(n.heapIndex)
	}
}

func (h *openHeap) siftUp(i int) bool {
	moved := false
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].f <= h.items[i].f {
			break
		}
		h.swap(parent, i)
		i = parent
		moved = true
	}
	return moved
}

func (h *openHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.items[left].f < h.items[smallest].f {
			smallest = left
		}
		if right < n && h.items[right].f < h.items[smallest].f {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *openHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].heapIndex = i
	h.items[j].heapIndex = j
}
