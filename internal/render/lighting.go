package render

import (
	"math"

	"imprint-viewer/internal/geom"
	"imprint-viewer/internal/scene"
)

// BakeColors evaluates the lighting rig per vertex and returns RGBA bytes, 4 per vertex.
// Diffuse lighting from a rig fixed to the mesh does not depend on the camera, so baking it
// once at upload gives the same image as lighting every frame.
func BakeColors(m *scene.Mesh, lights []scene.Light) []uint8 {
	g := m.Geometry
	n := g.VertexCount()
	out := make([]uint8, n*4)

	ambient := 0.0
	var diffuseTotal float64
	for _, l := range lights {
		if l.Kind == scene.Ambient {
			ambient += l.Intensity
		} else {
			diffuseTotal += math.Max(l.Intensity, 0)
		}
	}
	ambient = math.Min(math.Max(ambient, 0), 1)

	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	for i := 0; i < n; i++ {
		p := g.Vertex(i)
		nrm := normalize(geom.Vec3{float64(g.Normals[i*3]), float64(g.Normals[i*3+1]), float64(g.Normals[i*3+2])})

		shade := ambient
		if diffuseTotal > 0 {
			d := 0.0
			for _, l := range lights {
				var dir geom.Vec3
				switch l.Kind {
				case scene.Point:
					// light position in mesh-local units
					lp := geom.Vec3{
						(l.Position[0] - m.Position[0]) / scale,
						(l.Position[1] - m.Position[1]) / scale,
						(l.Position[2] - m.Position[2]) / scale,
					}
					dir = normalize(geom.Vec3{lp[0] - p[0], lp[1] - p[1], lp[2] - p[2]})
				case scene.Directional:
					dir = normalize(geom.Vec3{l.Position[0] - m.Position[0], l.Position[1] - m.Position[1], l.Position[2] - m.Position[2]})
				default:
					continue
				}
				d += math.Max(0, dot(nrm, dir)) * math.Max(l.Intensity, 0)
			}
			shade += (1 - ambient) * d / diffuseTotal
		}
		shade = math.Min(math.Max(shade, 0), 1)

		out[i*4] = uint8(float64(m.Color[0]) * shade)
		out[i*4+1] = uint8(float64(m.Color[1]) * shade)
		out[i*4+2] = uint8(float64(m.Color[2]) * shade)
		out[i*4+3] = 255
	}
	return out
}

func dot(a, b geom.Vec3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize(v geom.Vec3) geom.Vec3 {
	l := math.Sqrt(dot(v, v))
	if l == 0 {
		return v
	}
	return geom.Vec3{v[0] / l, v[1] / l, v[2] / l}
}
