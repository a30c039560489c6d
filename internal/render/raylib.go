package render

import (
	"log/slog"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"imprint-viewer/internal/geom"
	"imprint-viewer/internal/scene"
)

// Raylib renders through raylib. Create it after the window exists and use it from the
// window's goroutine only.
type Raylib struct {
	log      *slog.Logger
	current  *scene.Composed
	mesh     rl.Mesh
	material rl.Material
	uploaded bool
}

// NewRaylib returns a renderer with the default material. The window must already be open.
func NewRaylib(log *slog.Logger) *Raylib {
	if log == nil {
		log = slog.Default()
	}
	return &Raylib{log: log, material: rl.LoadMaterialDefault()}
}

// SetViewportSize resizes the window when it differs from the requested size.
func (r *Raylib) SetViewportSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if rl.GetScreenWidth() != width || rl.GetScreenHeight() != height {
		rl.SetWindowSize(width, height)
	}
}

// Render draws sc between BeginMode3D and EndMode3D. Call inside BeginDrawing/EndDrawing.
// A scene different from the previous call replaces the uploaded mesh.
func (r *Raylib) Render(sc *scene.Composed, cam Camera) {
	if sc != r.current {
		r.release()
		r.current = sc
		if sc != nil {
			r.upload(sc)
		}
	}
	rl.BeginMode3D(toCamera3D(cam))
	if r.uploaded {
		m := r.current.Mesh
		s := float32(m.Scale)
		transform := rl.MatrixMultiply(
			rl.MatrixScale(s, s, s),
			rl.MatrixTranslate(float32(m.Position[0]), float32(m.Position[1]), float32(m.Position[2])),
		)
		rl.DrawMesh(r.mesh, r.material, transform)
	}
	rl.EndMode3D()
}

// Close unloads the mesh and material.
func (r *Raylib) Close() {
	r.release()
	r.current = nil
	rl.UnloadMaterial(r.material)
}

// upload builds an rl.Mesh with baked vertex colours, the same layout as an STL triangle list.
func (r *Raylib) upload(sc *scene.Composed) {
	g := sc.Mesh.Geometry
	if g == nil || g.VertexCount() == 0 {
		r.log.Warn("scene has no geometry", "generation", sc.Generation)
		return
	}
	vertices := append([]float32(nil), g.Positions...)
	normals := append([]float32(nil), g.Normals...)
	colors := BakeColors(sc.Mesh, sc.Lights)

	mesh := rl.Mesh{
		VertexCount:   int32(g.VertexCount()),
		TriangleCount: int32(g.TriangleCount()),
		Vertices:      &vertices[0],
		Normals:       &normals[0],
		Colors:        &colors[0],
	}
	var pin runtime.Pinner
	pin.Pin(&vertices[0])
	pin.Pin(&normals[0])
	pin.Pin(&colors[0])
	rl.UploadMesh(&mesh, false)
	pin.Unpin()

	// GPU buffers hold the data now; drop CPU pointers so UnloadMesh never frees Go memory.
	mesh.Vertices, mesh.Normals, mesh.Colors = nil, nil, nil
	r.mesh = mesh
	r.uploaded = true
	r.log.Debug("mesh uploaded", "generation", sc.Generation, "triangles", mesh.TriangleCount)
}

func (r *Raylib) release() {
	if !r.uploaded {
		return
	}
	rl.UnloadMesh(&r.mesh)
	r.mesh = rl.Mesh{}
	r.uploaded = false
}

func toCamera3D(c Camera) rl.Camera3D {
	up := c.Up
	if up == (geom.Vec3{}) {
		up = geom.Vec3{0, 1, 0}
	}
	return rl.Camera3D{
		Position:   toVector3(c.Position),
		Target:     toVector3(c.Target),
		Up:         toVector3(up),
		Fovy:       float32(c.FovY),
		Projection: rl.CameraPerspective,
	}
}

func toVector3(v geom.Vec3) rl.Vector3 {
	return rl.NewVector3(float32(v[0]), float32(v[1]), float32(v[2]))
}
