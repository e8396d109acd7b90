package meshing

import (
	"container/heap"
	"context"
	"encoding/binary"
	"log/slog"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"voxelcore/internal/world"
)

// ChunkCoord identifies a chunk by its origin divided by 16.
type ChunkCoord struct {
	X, Y, Z int32
}

// chunkState is the per-chunk state machine from spec §4.5:
// clean -> (edit) dirty -> (submit) building -> (drain) clean, with
// dirty+building for edits received mid-build and unloaded for eviction.
type chunkState uint8

const (
	stateClean chunkState = iota
	stateDirty
	stateBuilding
	stateDirtyBuilding
	stateUnloaded
)

const shardCount = 32

// Builder is the Chunk Mesh Builder (C5): a fixed worker pool consuming a
// shared priority queue of submitted chunks, producing MeshArtifacts
// drained back to the main thread.
type Builder struct {
	grid  *world.Grid
	kinds *world.KindTable
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	queueMu sync.Mutex
	cond    *sync.Cond
	queue   taskHeap

	stateMu [shardCount]sync.Mutex
	state   map[ChunkCoord]chunkState

	completedMu sync.Mutex
	completed   []Completed
}

// Completed is one finished build, ready for the main-thread drain.
type Completed struct {
	Chunk    ChunkCoord
	Artifact *MeshArtifact
}

type task struct {
	chunk    ChunkCoord
	snapshot *world.ChunkSnapshot
	priority float64 // squared distance, smallest first
	index    int
}

type taskHeap []*task

func (h taskHeap) Len() int            { return len(h) }
func (h taskHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h taskHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x interface{}) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

func shardFor(c ChunkCoord) int {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Y))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(c.Z))
	return int(fnv1a.HashBytes32(buf[:]) % shardCount)
}

// NewBuilder starts workers workers (spec §4.5: max(1,cores-1)) bound to
// grid/kinds for snapshot capture and shape lookup.
func NewBuilder(ctx context.Context, grid *world.Grid, kinds *world.KindTable, workers int, log *slog.Logger) *Builder {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	b := &Builder{
		grid:   grid,
		kinds:  kinds,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		state:  make(map[ChunkCoord]chunkState),
	}
	b.cond = sync.NewCond(&b.queueMu)
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.workerLoop()
	}
	return b
}

// Shutdown cancels the pool's context, wakes the workers waiting on the
// queue and joins them with WaitGroup.Wait, as the teacher's
// WorkerPool.Shutdown does; no channel is closed.
func (b *Builder) Shutdown() {
	b.cancel()
	b.queueMu.Lock()
	b.cond.Broadcast()
	b.queueMu.Unlock()
	b.wg.Wait()
}

func (b *Builder) lockState(c ChunkCoord) int {
	s := shardFor(c)
	b.stateMu[s].Lock()
	return s
}

// MarkDirty transitions a chunk to dirty (or dirty+building if a build for
// it is already in flight), per spec §4.1's "notify both the Chunk Mesh
// Builder's dirty-set ... and the Lighting Engine".
func (b *Builder) MarkDirty(c ChunkCoord) {
	s := b.lockState(c)
	defer b.stateMu[s].Unlock()
	switch b.state[c] {
	case stateBuilding:
		b.state[c] = stateDirtyBuilding
	case stateUnloaded:
		b.state[c] = stateDirty
	default:
		b.state[c] = stateDirty
	}
}

// Unload marks a chunk unloaded; any in-flight build's completed entry is
// dropped on drain instead of uploaded.
func (b *Builder) Unload(c ChunkCoord) {
	s := b.lockState(c)
	defer b.stateMu[s].Unlock()
	b.state[c] = stateUnloaded
}

// TileChanged implements world.Listener: an edit at (x,y,z) dirties every
// chunk within one chunk of it, since lighting/face-culling can reach
// neighbours (spec §4.1: "all 27 chunks around the edit").
func (b *Builder) TileChanged(x, y, z int) {
	cx, cy, cz := int32(chunkFloorDiv(x)), int32(chunkFloorDiv(y)), int32(chunkFloorDiv(z))
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dz := int32(-1); dz <= 1; dz++ {
				b.MarkDirty(ChunkCoord{cx + dx, cy + dy, cz + dz})
			}
		}
	}
}

func (b *Builder) LightChanged(x, y, z int) { b.TileChanged(x, y, z) }
func (b *Builder) AllChanged() {
	for i := range b.stateMu {
		b.stateMu[i].Lock()
	}
	for c := range b.state {
		b.state[c] = stateDirty
	}
	for i := range b.stateMu {
		b.stateMu[i].Unlock()
	}
}

// DirtyChunks returns every chunk currently in the dirty state, for the
// tick driver to resubmit via QueueChunk (dirty+building chunks are left
// out: QueueChunk only accepts plain dirty, and they transition back to
// dirty on their own once the in-flight build finishes). Locks every shard
// simultaneously, same as AllChanged, to take a consistent snapshot of the
// state map.
func (b *Builder) DirtyChunks() []ChunkCoord {
	for i := range b.stateMu {
		b.stateMu[i].Lock()
	}
	var out []ChunkCoord
	for c, s := range b.state {
		if s == stateDirty {
			out = append(out, c)
		}
	}
	for i := range b.stateMu {
		b.stateMu[i].Unlock()
	}
	return out
}

func chunkFloorDiv(v int) int {
	if v >= 0 {
		return v / world.ChunkSize
	}
	return -(((-v) + world.ChunkSize - 1) / world.ChunkSize)
}

// QueueChunk captures a snapshot for a dirty chunk and submits it at the
// given priority (squared camera distance). Chunks not currently dirty
// (or already building) are skipped, per spec §4.5's submit path.
func (b *Builder) QueueChunk(c ChunkCoord, priority float64) {
	s := b.lockState(c)
	switch b.state[c] {
	case stateDirty:
		b.state[c] = stateBuilding
	default:
		b.stateMu[s].Unlock()
		return
	}
	b.stateMu[s].Unlock()

	snap := world.CaptureChunkSnapshot(b.grid, b.kinds, int(c.X)*world.ChunkSize, int(c.Y)*world.ChunkSize, int(c.Z)*world.ChunkSize)

	b.queueMu.Lock()
	heap.Push(&b.queue, &task{chunk: c, snapshot: snap, priority: priority})
	b.cond.Signal()
	b.queueMu.Unlock()
}

func (b *Builder) workerLoop() {
	defer b.wg.Done()
	for {
		b.queueMu.Lock()
		for b.queue.Len() == 0 && b.ctx.Err() == nil {
			b.cond.Wait()
		}
		if b.ctx.Err() != nil && b.queue.Len() == 0 {
			b.queueMu.Unlock()
			return
		}
		t := heap.Pop(&b.queue).(*task)
		b.queueMu.Unlock()

		artifact := build(t.snapshot, b.kinds)

		s := b.lockState(t.chunk)
		switch b.state[t.chunk] {
		case stateBuilding:
			b.state[t.chunk] = stateClean
		case stateDirtyBuilding:
			b.state[t.chunk] = stateDirty
		case stateUnloaded:
			b.stateMu[s].Unlock()
			continue
		}
		b.stateMu[s].Unlock()

		b.completedMu.Lock()
		b.completed = append(b.completed, Completed{Chunk: t.chunk, Artifact: artifact})
		b.completedMu.Unlock()
	}
}

// build is the synchronous worker body (also used directly as the
// reference builder for the mesh-equivalence property test): it iterates
// every cell of the 16^3 interior and appends its faces.
func build(snap *world.ChunkSnapshot, kinds *world.KindTable) *MeshArtifact {
	a := &MeshArtifact{}
	for y := 0; y < world.ChunkSize; y++ {
		for z := 0; z < world.ChunkSize; z++ {
			for x := 0; x < world.ChunkSize; x++ {
				buildCell(a, snap, kinds, x, y, z)
			}
		}
	}
	return a
}

// DrainCompleted swaps out the completed list (spec §4.5's drain path).
// Chunks that transitioned to unloaded mid-build are dropped here rather
// than returned for upload.
func (b *Builder) DrainCompleted() []Completed {
	b.completedMu.Lock()
	out := b.completed
	b.completed = nil
	b.completedMu.Unlock()

	filtered := out[:0]
	for _, c := range out {
		s := b.lockState(c.Chunk)
		unloaded := b.state[c.Chunk] == stateUnloaded
		b.stateMu[s].Unlock()
		if unloaded {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}
