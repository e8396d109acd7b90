// Package meshing builds per-chunk vertex/index buffers from chunk
// snapshots on a pool of background workers, draining completed meshes
// back to the main thread for upload.
package meshing

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Vertex is one interleaved mesh vertex: position, texture coordinate,
// packed RGBA color, normal index, and the two light channels sampled at
// build time (spec §3, "Mesh artifact").
type Vertex struct {
	X, Y, Z    float32
	U, V       float32
	Color      uint32
	Normal     uint8
	SkyLight   uint8
	BlockLight uint8
}

// Layer is one of the three mesh layers a chunk mesh is split into.
type Layer struct {
	Vertices []Vertex
	Indices  []uint32
}

func (l *Layer) quad(v0, v1, v2, v3 Vertex) {
	base := uint32(len(l.Vertices))
	l.Vertices = append(l.Vertices, v0, v1, v2, v3)
	l.Indices = append(l.Indices, base, base+1, base+2, base, base+2, base+3)
}

// MeshArtifact is the three-layer result of building one chunk (spec §3).
type MeshArtifact struct {
	Solid, Cutout, Translucent Layer
}

// ContentHash hashes the face content of all three layers so callers can
// cheaply detect a no-op rebuild (an edit that rebuilt to byte-identical
// geometry), independent of vertex ordering within a face.
func (m *MeshArtifact) ContentHash() uint64 {
	h := xxhash.New()
	var buf [16]byte
	hashLayer := func(l *Layer) {
		// Faces are quads of 4 vertices; per-vertex hashes are summed so
		// the order of a face's vertices does not change its contribution.
		for i := 0; i < len(l.Vertices); i += 4 {
			end := i + 4
			if end > len(l.Vertices) {
				end = len(l.Vertices)
			}
			var faceSum uint64
			for _, v := range l.Vertices[i:end] {
				binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.X))
				binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Y))
				binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Z))
				binary.LittleEndian.PutUint32(buf[12:16], v.Color)
				faceSum += xxhash.Sum64(buf[:])
			}
			binary.LittleEndian.PutUint64(buf[0:8], faceSum)
			h.Write(buf[0:8])
		}
	}
	hashLayer(&m.Solid)
	hashLayer(&m.Cutout)
	hashLayer(&m.Translucent)
	return h.Sum64()
}
