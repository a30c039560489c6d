package asset

import "imprint-viewer/internal/geom"

// Geometry is a flat triangle list: every 9 floats of Positions are one triangle,
// Normals holds one normal per vertex in the same layout.
type Geometry struct {
	Positions []float32
	Normals   []float32
}

// VertexCount returns the number of vertices in g.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// TriangleCount returns the number of triangles in g.
func (g *Geometry) TriangleCount() int {
	return len(g.Positions) / 9
}

// Vertex returns vertex i as a float64 point.
func (g *Geometry) Vertex(i int) geom.Vec3 {
	return geom.Vec3{float64(g.Positions[i*3]), float64(g.Positions[i*3+1]), float64(g.Positions[i*3+2])}
}

// Bounds computes the bounding box of all vertices.
func (g *Geometry) Bounds() geom.BoundingBox {
	b := geom.EmptyBox()
	for i := 0; i < g.VertexCount(); i++ {
		v := g.Vertex(i)
		b.Extend(&v)
	}
	return b
}

// ParsedAsset is a loaded mesh together with its bounding box. It is never mutated after
// the pipeline returns it; a reload produces a new ParsedAsset.
type ParsedAsset struct {
	Name       string
	Geometry   *Geometry
	Box        geom.BoundingBox
	Generation uint64
}
