package lighting

import (
	"testing"

	"voxelcore/internal/world"
)

// naiveRelax recomputes both light layers to a fixed point by repeatedly
// sweeping the whole grid, independent of the engine's queue/BFS machinery
// — the brute-force oracle for the property tests below.
func naiveRelax(g *world.Grid, kinds *world.KindTable) (sky, block [][][]byte) {
	sky = make3D(g.W, g.H, g.D)
	block = make3D(g.W, g.H, g.D)

	for changed := true; changed; {
		changed = false
		for x := 0; x < g.W; x++ {
			for y := 0; y < g.H; y++ {
				for z := 0; z < g.D; z++ {
					skySrc := byte(0)
					if g.SkyLit(x, y, z) {
						skySrc = 15
					}
					blockSrc := g.Emission(x, y, z)

					skyTarget := relax(g, kinds, sky, x, y, z, skySrc)
					blockTarget := relax(g, kinds, block, x, y, z, blockSrc)

					if sky[x][y][z] != skyTarget {
						sky[x][y][z] = skyTarget
						changed = true
					}
					if block[x][y][z] != blockTarget {
						block[x][y][z] = blockTarget
						changed = true
					}
				}
			}
		}
	}
	return sky, block
}

func relax(g *world.Grid, kinds *world.KindTable, field [][][]byte, x, y, z int, source byte) byte {
	best := source
	for _, d := range neighborOffsets {
		nx, ny, nz := x+d[0], y+d[1], z+d[2]
		if !g.InBounds(nx, ny, nz) {
			continue
		}
		atten := int(kinds.Attenuation(g.BlockID(nx, ny, nz)))
		if atten < 1 {
			atten = 1
		}
		candidate := int(field[nx][ny][nz]) - atten
		if candidate > int(best) {
			best = byte(candidate)
		}
	}
	if best > 15 {
		best = 15
	}
	return best
}

func make3D(w, h, d int) [][][]byte {
	out := make([][][]byte, w)
	for x := range out {
		out[x] = make([][]byte, h)
		for y := range out[x] {
			out[x][y] = make([]byte, d)
		}
	}
	return out
}

func newTestWorld(w, h, d int) (*world.World, *world.KindTable) {
	kinds := world.NewKindTable()
	wd := world.New(w, h, d, kinds, nil)
	return wd, kinds
}

func drainAll(e *Engine) {
	for e.Pending() > 0 {
		e.ProcessUpdates(1 << 20)
	}
}

func TestLightConsistencyAgainstNaiveReference(t *testing.T) {
	wd, kinds := newTestWorld(16, 16, 16)
	eng := New(wd.Grid, kinds, nil, nil)
	wd.AddListener(eng)
	eng.Initialize()

	stoneID, _ := kinds.ByName("stone")
	torchID, _ := kinds.ByName("torch")
	for y := 0; y < 8; y++ {
		for z := 0; z < 16; z++ {
			for x := 0; x < 16; x++ {
				wd.SetTile(x, y, z, stoneID)
			}
		}
	}
	wd.SetTile(8, 8, 8, world.Air)
	wd.SetTile(8, 7, 8, torchID)
	drainAll(eng)

	refSky, refBlock := naiveRelax(wd.Grid, kinds)

	for x := 0; x < wd.Grid.W; x++ {
		for y := 0; y < wd.Grid.H; y++ {
			for z := 0; z < wd.Grid.D; z++ {
				if got, want := wd.Grid.SkyLight(x, y, z), refSky[x][y][z]; got != want {
					t.Fatalf("sky light at (%d,%d,%d) = %d, want %d", x, y, z, got, want)
				}
				if got, want := wd.Grid.BlockLight(x, y, z), refBlock[x][y][z]; got != want {
					t.Fatalf("block light at (%d,%d,%d) = %d, want %d", x, y, z, got, want)
				}
			}
		}
	}
}

func TestProcessUpdatesIdempotentOnEmptyQueue(t *testing.T) {
	wd, kinds := newTestWorld(16, 16, 16)
	eng := New(wd.Grid, kinds, nil, nil)
	eng.ProcessUpdates(100) // empty queue: no-op, must not panic
	if eng.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", eng.Pending())
	}
}

func TestQueueUpdateAtTwiceThenDrainOnceMatchesOnce(t *testing.T) {
	wdA, kindsA := newTestWorld(16, 16, 16)
	engA := New(wdA.Grid, kindsA, nil, nil)
	wdA.AddListener(engA)
	torchA, _ := kindsA.ByName("torch")
	wdA.SetTile(5, 5, 5, torchA)
	drainAll(engA)

	wdB, kindsB := newTestWorld(16, 16, 16)
	engB := New(wdB.Grid, kindsB, nil, nil)
	wdB.AddListener(engB)
	torchB, _ := kindsB.ByName("torch")
	wdB.SetTile(5, 5, 5, torchB)
	engB.QueueUpdateAt(5, 5, 5)
	drainAll(engB)

	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				if wdA.Grid.BlockLight(x, y, z) != wdB.Grid.BlockLight(x, y, z) {
					t.Fatalf("block light diverged at (%d,%d,%d)", x, y, z)
				}
			}
		}
	}
}

func TestPlaceTorchInCave(t *testing.T) {
	wd, kinds := newTestWorld(16, 16, 16)
	eng := New(wd.Grid, kinds, nil, nil)
	wd.AddListener(eng)
	eng.Initialize()

	stoneID, _ := kinds.ByName("stone")
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				wd.SetTile(x, y, z, stoneID)
			}
		}
	}
	for dx := 7; dx <= 9; dx++ {
		for dy := 7; dy <= 9; dy++ {
			for dz := 7; dz <= 9; dz++ {
				wd.SetTile(dx, dy, dz, world.Air)
			}
		}
	}
	torchID, _ := kinds.ByName("torch")
	wd.SetTile(8, 8, 8, torchID)
	drainAll(eng)

	if v := wd.Grid.BlockLight(8, 8, 8); v != 14 {
		t.Fatalf("block light at torch = %d, want 14", v)
	}
	if v := wd.Grid.BlockLight(9, 8, 8); v != 13 {
		t.Fatalf("block light one step away = %d, want 13", v)
	}
}

func TestDarkRemovalCorrectness(t *testing.T) {
	wd, kinds := newTestWorld(16, 16, 16)
	eng := New(wd.Grid, kinds, nil, nil)
	wd.AddListener(eng)
	eng.Initialize()

	torchID, _ := kinds.ByName("torch")
	wd.SetTile(8, 8, 8, torchID)
	drainAll(eng)

	wd.SetTile(8, 8, 8, world.Air)
	drainAll(eng)

	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			for z := 0; z < 16; z++ {
				if v := wd.Grid.BlockLight(x, y, z); v != 0 {
					t.Fatalf("residual block light at (%d,%d,%d) = %d, want 0", x, y, z, v)
				}
			}
		}
	}
}
