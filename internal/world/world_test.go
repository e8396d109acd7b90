package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func TestGridOutOfBoundsReadsAreNeutral(t *testing.T) {
	g := NewGrid(16, 16, 16, NewKindTable())
	if id := g.BlockID(-1, 0, 0); id != Air {
		t.Fatalf("out-of-bounds id = %v, want Air", id)
	}
	if sky := g.SkyLight(100, 0, 0); sky != 15 {
		t.Fatalf("out-of-bounds sky light = %d, want 15", sky)
	}
	if bl := g.BlockLight(0, -5, 0); bl != 0 {
		t.Fatalf("out-of-bounds block light = %d, want 0", bl)
	}
}

func TestHeightmapTracksTopmostAttenuatingCell(t *testing.T) {
	kinds := NewKindTable()
	w := New(16, 16, 16, kinds, nil)
	if h := w.Grid.Heightmap(5, 5); h != 16 {
		t.Fatalf("empty column heightmap = %d, want 16", h)
	}
	w.SetTile(5, 3, 5, 1) // stone, attenuation 15
	if h := w.Grid.Heightmap(5, 5); h != 4 {
		t.Fatalf("heightmap after placing at y=3 = %d, want 4", h)
	}
	w.SetTile(5, 3, 5, Air)
	if h := w.Grid.Heightmap(5, 5); h != 0 {
		t.Fatalf("heightmap after removing = %d, want 0", h)
	}
}

func TestMayPlaceRejectsOverlappingOccupant(t *testing.T) {
	kinds := NewKindTable()
	w := New(16, 16, 16, kinds, nil)
	stoneID, _ := kinds.ByName("stone")

	occupant := Occupant{
		ID:             uuid.New(),
		Bounds:         AABB{Min: mgl32.Vec3{5, 0, 5}, Max: mgl32.Vec3{6, 1, 6}},
		BlocksBuilding: true,
	}
	w.SetOccupant(occupant)

	if w.MayPlace(stoneID, 5, 0, 5, uuid.Nil) {
		t.Fatal("expected placement to be rejected by overlapping occupant")
	}
}

func TestChunkSnapshotMarginOutsideWorldReadsNeutral(t *testing.T) {
	kinds := NewKindTable()
	g := NewGrid(16, 16, 16, kinds)
	snap := CaptureChunkSnapshot(g, kinds, 0, 0, 0)
	if id := snap.BlockID(-1, -1, -1); id != Air {
		t.Fatalf("margin id outside world = %v, want Air", id)
	}
	if sky := snap.SkyLight(-1, -1, -1); sky != 15 {
		t.Fatalf("margin sky outside world = %d, want 15", sky)
	}
	if bl := snap.BlockLight(-1, -1, -1); bl != 0 {
		t.Fatalf("margin block light outside world = %d, want 0", bl)
	}
}

func TestBlockSnapshotOutOfRangeReadsAir(t *testing.T) {
	kinds := NewKindTable()
	g := NewGrid(16, 16, 16, kinds)
	snap := CaptureBlockSnapshot(g, 8, 8, 2)
	if id := snap.BlockID(1000, 0, 0); id != Air {
		t.Fatalf("out-of-range block snapshot read = %v, want Air", id)
	}
}
