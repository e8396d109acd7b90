package lighting

import "math"

// ramp is the fixed 16-entry brightness curve, rising from 0.05 at index 0
// to 1.0 at index 15.
var ramp = [16]float32{
	0.05, 0.10, 0.16, 0.22, 0.28, 0.34, 0.40, 0.47,
	0.54, 0.61, 0.68, 0.76, 0.84, 0.90, 0.96, 1.00,
}

// SkyDarken derives the [0,11] sky-darkening amount from world time,
// cosine-shaped so dusk/dawn fall off gradually and midnight holds the
// floor value.
func SkyDarken(worldTime float64) int {
	phase := worldTime - math.Floor(worldTime)
	c := math.Cos(phase * 2 * math.Pi)
	d := int((1 - c) / 2 * 11)
	if d < 0 {
		d = 0
	}
	if d > 11 {
		d = 11
	}
	return d
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

// Brightness returns the rendered brightness at a cell, applying
// sky_darken to the sky component (spec §4.4).
func (e *Engine) Brightness(x, y, z int, skyDarken int) float32 {
	sky := int(e.grid.SkyLight(x, y, z)) - skyDarken
	if sky < 0 {
		sky = 0
	}
	block := int(e.grid.BlockLight(x, y, z))
	idx := sky
	if block > idx {
		idx = block
	}
	return ramp[clampInt(idx, 0, 15)]
}

// BrightnessForChunk omits sky_darken so the mesher can bake raw light
// values and let shaders apply time-of-day dynamically.
func (e *Engine) BrightnessForChunk(x, y, z int) float32 {
	sky := e.grid.SkyLight(x, y, z)
	block := e.grid.BlockLight(x, y, z)
	return ramp[clampInt(int(maxByte(sky, block)), 0, 15)]
}
