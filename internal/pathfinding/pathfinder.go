// Package pathfinding implements the async priority-queued A* pathfinder
// (C6): requests carry their own block snapshot, are served by a small
// worker pool, and are subject to per-entity supersession so only the
// latest request for an entity ever produces a result.
package pathfinding

import (
	"container/heap"
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"voxelcore/internal/world"
)

// Request is one queued pathfinding request (spec §3).
type Request struct {
	RequestID         int64
	EntityID          uuid.UUID
	BBWidth, BBHeight float64
	Start, Target     [3]int
	MaxSearchDistance float64
	Snapshot          *world.BlockSnapshot
	priority          float64
	index             int
}

// Result is the outcome of one completed request (spec §3). Path is nil
// when no path could be produced at all.
type Result struct {
	RequestID int64
	EntityID  uuid.UUID
	Path      [][3]int
}

type requestHeap []*Request

func (h requestHeap) Len() int           { return len(h) }
func (h requestHeap) Less(i, j int) bool { return h[i].priority < h[j].priority }
func (h requestHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}
func (h *requestHeap) Push(x interface{}) {
	r := x.(*Request)
	r.index = len(*h)
	*h = append(*h, r)
}
func (h *requestHeap) Pop() interface{} {
	old := *h
	n := len(old)
	r := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return r
}

// Pathfinder owns the request queue, the pending-supersession map, and a
// pool of workers computing A* paths over BlockSnapshots.
type Pathfinder struct {
	kinds *world.KindTable
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	queueMu sync.Mutex
	cond    *sync.Cond
	queue   requestHeap

	pendingMu sync.Mutex
	pending   map[uuid.UUID]int64

	completedMu sync.Mutex
	completed   map[uuid.UUID][]Result

	nextID int64
}

// New starts a pathfinder with the given worker count (spec §5 default 2).
func New(ctx context.Context, kinds *world.KindTable, workers int, log *slog.Logger) *Pathfinder {
	if workers < 1 {
		workers = 2
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Pathfinder{
		kinds:     kinds,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		pending:   make(map[uuid.UUID]int64),
		completed: make(map[uuid.UUID][]Result),
	}
	p.cond = sync.NewCond(&p.queueMu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.workerLoop()
	}
	return p
}

func (p *Pathfinder) Shutdown() {
	p.cancel()
	p.queueMu.Lock()
	p.cond.Broadcast()
	p.queueMu.Unlock()
	p.wg.Wait()
}

// QueueRequest builds a request, installs it as the entity's pending
// request (superseding any older one), and pushes it onto the priority
// queue keyed by distance-to-target. Returns the new request id, or -1 if
// entity is the zero UUID (spec §4.6/§7: "a request with no entity returns
// -1 without queuing").
func (p *Pathfinder) QueueRequest(entity uuid.UUID, snap *world.BlockSnapshot, bbWidth, bbHeight float64, start, target [3]int, maxDistance float64) int64 {
	if entity == uuid.Nil || snap == nil {
		return -1
	}
	p.pendingMu.Lock()
	p.nextID++
	id := p.nextID
	p.pending[entity] = id
	p.pendingMu.Unlock()

	dx := float64(start[0] - target[0])
	dy := float64(start[1] - target[1])
	dz := float64(start[2] - target[2])
	priority := dx*dx + dy*dy + dz*dz

	req := &Request{
		RequestID: id, EntityID: entity,
		BBWidth: bbWidth, BBHeight: bbHeight,
		Start: start, Target: target,
		MaxSearchDistance: maxDistance,
		Snapshot:          snap,
		priority:          priority,
	}

	p.queueMu.Lock()
	heap.Push(&p.queue, req)
	p.cond.Signal()
	p.queueMu.Unlock()
	return id
}

func (p *Pathfinder) workerLoop() {
	defer p.wg.Done()
	for {
		p.queueMu.Lock()
		for p.queue.Len() == 0 && p.ctx.Err() == nil {
			p.cond.Wait()
		}
		if p.ctx.Err() != nil && p.queue.Len() == 0 {
			p.queueMu.Unlock()
			return
		}
		req := heap.Pop(&p.queue).(*Request)
		p.queueMu.Unlock()

		p.pendingMu.Lock()
		current, ok := p.pending[req.EntityID]
		stale := !ok || current != req.RequestID
		p.pendingMu.Unlock()
		if stale {
			continue
		}

		path, _ := FindPath(req.Snapshot, p.kinds, req.Start, req.Target, req.BBWidth, req.BBHeight, req.MaxSearchDistance)

		p.pendingMu.Lock()
		if p.pending[req.EntityID] == req.RequestID {
			delete(p.pending, req.EntityID)
		}
		p.pendingMu.Unlock()

		p.completedMu.Lock()
		p.completed[req.EntityID] = append(p.completed[req.EntityID], Result{RequestID: req.RequestID, EntityID: req.EntityID, Path: path})
		p.completedMu.Unlock()
	}
}

// DrainCompleted returns and clears completed results for entity, per
// spec §6's Path API (called each tick for the entity's own AI step).
func (p *Pathfinder) DrainCompleted(entity uuid.UUID) []Result {
	p.completedMu.Lock()
	defer p.completedMu.Unlock()
	out := p.completed[entity]
	delete(p.completed, entity)
	return out
}

// CancelRequests removes entity's pending entry; a worker that later pops
// a request for it will observe the mismatch and discard silently.
func (p *Pathfinder) CancelRequests(entity uuid.UUID) {
	p.pendingMu.Lock()
	delete(p.pending, entity)
	p.pendingMu.Unlock()
}

func (p *Pathfinder) HasPending(entity uuid.UUID) bool {
	p.pendingMu.Lock()
	defer p.pendingMu.Unlock()
	_, ok := p.pending[entity]
	return ok
}
