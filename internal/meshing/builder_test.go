package meshing

import (
	"context"
	"testing"
	"time"

	"voxelcore/internal/world"
)

// faceKey is a vertex-order-independent identity for one emitted quad,
// letting the equivalence test compare multisets of faces rather than
// exact vertex arrays (spec §8 P3: "modulo vertex ordering within a
// face").
type faceKey struct {
	minX, minY, minZ int32
	maxX, maxY, maxZ int32
	normal           uint8
}

func faceMultiset(l *Layer) map[faceKey]int {
	out := make(map[faceKey]int)
	for i := 0; i+3 < len(l.Vertices); i += 4 {
		quad := l.Vertices[i : i+4]
		minX, minY, minZ := quad[0].X, quad[0].Y, quad[0].Z
		maxX, maxY, maxZ := quad[0].X, quad[0].Y, quad[0].Z
		for _, v := range quad[1:] {
			if v.X < minX {
				minX = v.X
			}
			if v.X > maxX {
				maxX = v.X
			}
			if v.Y < minY {
				minY = v.Y
			}
			if v.Y > maxY {
				maxY = v.Y
			}
			if v.Z < minZ {
				minZ = v.Z
			}
			if v.Z > maxZ {
				maxZ = v.Z
			}
		}
		key := faceKey{
			int32(minX * 1000), int32(minY * 1000), int32(minZ * 1000),
			int32(maxX * 1000), int32(maxY * 1000), int32(maxZ * 1000),
			quad[0].Normal,
		}
		out[key]++
	}
	return out
}

func TestAsyncBuildEquivalentToSynchronousReference(t *testing.T) {
	kinds := world.NewKindTable()
	wd := world.New(32, 32, 32, kinds, nil)
	grid := wd.Grid
	stoneID, _ := kinds.ByName("stone")
	// a simple chequered slab so the chunk has non-trivial, varied faces
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			if (x+z)%2 == 0 {
				wd.SetTile(x, 4, z, stoneID)
			}
		}
	}

	snap := world.CaptureChunkSnapshot(grid, kinds, 0, 0, 0)
	reference := build(snap, kinds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBuilder(ctx, grid, kinds, 2, nil)
	defer b.Shutdown()

	c := ChunkCoord{0, 0, 0}
	b.MarkDirty(c)
	b.QueueChunk(c, 0)

	var completed []Completed
	deadline := time.Now().Add(2 * time.Second)
	for len(completed) == 0 && time.Now().Before(deadline) {
		completed = b.DrainCompleted()
		if len(completed) == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed build, got %d", len(completed))
	}

	got := completed[0].Artifact
	for name, pair := range map[string][2]*Layer{
		"solid":       {&reference.Solid, &got.Solid},
		"cutout":      {&reference.Cutout, &got.Cutout},
		"translucent": {&reference.Translucent, &got.Translucent},
	} {
		want := faceMultiset(pair[0])
		have := faceMultiset(pair[1])
		if len(want) != len(have) {
			t.Fatalf("%s layer face count mismatch: reference=%d async=%d", name, len(want), len(have))
		}
		for k, n := range want {
			if have[k] != n {
				t.Fatalf("%s layer face %v count mismatch: reference=%d async=%d", name, k, n, have[k])
			}
		}
	}
}
