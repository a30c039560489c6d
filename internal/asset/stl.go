package asset

import (
	"bytes"
	"math"

	"github.com/hschendel/stl"
)

// Parser turns a binary payload into geometry and its bounding box.
type Parser interface {
	Parse(payload []byte) (*ParsedAsset, error)
}

// STLParser reads binary and ASCII STL payloads.
type STLParser struct{}

// Parse decodes payload. Facet normals missing from the file are recomputed from the winding.
func (STLParser) Parse(payload []byte) (*ParsedAsset, error) {
	if len(payload) == 0 {
		return nil, &ParseError{Err: ErrEmptyPayload}
	}
	solid, err := stl.ReadAll(bytes.NewReader(payload))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(solid.Triangles) == 0 {
		return nil, &ParseError{Err: ErrEmptyPayload}
	}

	g := &Geometry{
		Positions: make([]float32, 0, len(solid.Triangles)*9),
		Normals:   make([]float32, 0, len(solid.Triangles)*9),
	}
	for _, tri := range solid.Triangles {
		n := [3]float32(tri.Normal)
		if n == [3]float32{} {
			n = faceNormal(tri.Vertices)
		}
		for _, v := range tri.Vertices {
			g.Positions = append(g.Positions, v[0], v[1], v[2])
			g.Normals = append(g.Normals, n[0], n[1], n[2])
		}
	}
	return &ParsedAsset{Name: solid.Name, Geometry: g, Box: g.Bounds()}, nil
}

func faceNormal(v [3]stl.Vec3) [3]float32 {
	ax, ay, az := v[1][0]-v[0][0], v[1][1]-v[0][1], v[1][2]-v[0][2]
	bx, by, bz := v[2][0]-v[0][0], v[2][1]-v[0][1], v[2][2]-v[0][2]
	nx, ny, nz := ay*bz-az*by, az*bx-ax*bz, ax*by-ay*bx
	l := float32(math.Sqrt(float64(nx*nx + ny*ny + nz*nz)))
	if l == 0 {
		return [3]float32{}
	}
	return [3]float32{nx / l, ny / l, nz / l}
}
