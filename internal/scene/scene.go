package scene

import (
	"imprint-viewer/internal/asset"
	"imprint-viewer/internal/geom"
)

// UpAxis names the vertical axis of incoming meshes.
type UpAxis string

const (
	UpY UpAxis = "y"
	UpZ UpAxis = "z" // scanned meshes; converted to Y-up on compose
)

// LightKind distinguishes the lights of the rig.
type LightKind int

const (
	Ambient LightKind = iota
	Point
	Directional
)

func (k LightKind) String() string {
	switch k {
	case Point:
		return "point"
	case Directional:
		return "directional"
	}
	return "ambient"
}

// Light is one entry of the lighting rig. Position is in world space; for a directional
// light it is the point the light shines from toward the pivot.
type Light struct {
	Kind      LightKind
	Intensity float64
	Color     [3]uint8
	Position  geom.Vec3
	// Attached lights follow the mesh transform.
	Attached bool
}

// Mesh is the renderable node: geometry centered on its local origin, placed at Position
// and uniformly scaled.
type Mesh struct {
	Geometry *asset.Geometry
	Position geom.Vec3
	Scale    float64
	Color    [3]uint8
}

// Composed is everything the renderer needs for one asset. A reload builds a new Composed;
// nothing here is shared with the previous one.
type Composed struct {
	Name       string
	Generation uint64
	Mesh       *Mesh
	Lights     []Light
	// Pivot is the world-space center of the original bounding box.
	Pivot geom.Vec3
	// Bounds is the world-space bounding box of the displayed mesh.
	Bounds geom.BoundingBox
}

// Options controls composition.
type Options struct {
	Scale                float64
	UpAxis               UpAxis
	AmbientIntensity     float64
	PointIntensity       float64
	PointOffset          geom.Vec3
	DirectionalIntensity float64
	DirectionalOffset    geom.Vec3
	MeshColor            [3]uint8
}

// DefaultOptions mirrors the stock lighting rig: dim ambient fill, a strong point light riding
// with the mesh and a unit directional light.
func DefaultOptions() Options {
	return Options{
		Scale:                10,
		UpAxis:               UpZ,
		AmbientIntensity:     0.2,
		PointIntensity:       20,
		PointOffset:          geom.Vec3{50, 50, 50},
		DirectionalIntensity: 1,
		DirectionalOffset:    geom.Vec3{-50, 60, 150},
		MeshColor:            [3]uint8{255, 255, 255},
	}
}

var white = [3]uint8{255, 255, 255}

// Composer builds a Composed from a parsed asset.
type Composer struct {
	opts Options
}

// NewComposer returns a composer. A non-positive scale is replaced by 1.
func NewComposer(opts Options) *Composer {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.UpAxis == "" {
		opts.UpAxis = UpZ
	}
	return &Composer{opts: opts}
}

// Compose centers the geometry on its local origin and places the node at the original
// center, so the pivot is the mesh's true spatial center. The asset is not modified.
func (c *Composer) Compose(a *asset.ParsedAsset) *Composed {
	box := a.Box
	if c.opts.UpAxis == UpZ {
		box = geom.BoxZUpToYUp(box)
	}
	center := geom.Center(box)
	s := c.opts.Scale
	pivot := geom.Vec3{center[0] * s, center[1] * s, center[2] * s}

	g := &asset.Geometry{
		Positions: make([]float32, len(a.Geometry.Positions)),
		Normals:   make([]float32, len(a.Geometry.Normals)),
	}
	for i := 0; i+2 < len(a.Geometry.Positions); i += 3 {
		p := geom.Vec3{float64(a.Geometry.Positions[i]), float64(a.Geometry.Positions[i+1]), float64(a.Geometry.Positions[i+2])}
		if c.opts.UpAxis == UpZ {
			p = geom.ZUpToYUp(p)
		}
		g.Positions[i] = float32(p[0] - center[0])
		g.Positions[i+1] = float32(p[1] - center[1])
		g.Positions[i+2] = float32(p[2] - center[2])
	}
	for i := 0; i+2 < len(a.Geometry.Normals); i += 3 {
		n := a.Geometry.Normals[i : i+3]
		if c.opts.UpAxis == UpZ {
			g.Normals[i], g.Normals[i+1], g.Normals[i+2] = n[0], n[2], -n[1]
		} else {
			copy(g.Normals[i:i+3], n)
		}
	}

	return &Composed{
		Name:       a.Name,
		Generation: a.Generation,
		Mesh: &Mesh{
			Geometry: g,
			Position: pivot,
			Scale:    s,
			Color:    c.opts.MeshColor,
		},
		Lights: c.lights(pivot),
		Pivot:  pivot,
		Bounds: geom.Scale(box, s),
	}
}

// lights builds a fresh rig for one asset.
func (c *Composer) lights(pivot geom.Vec3) []Light {
	po, do := c.opts.PointOffset, c.opts.DirectionalOffset
	return []Light{
		{Kind: Ambient, Intensity: c.opts.AmbientIntensity, Color: white},
		{
			Kind:      Point,
			Intensity: c.opts.PointIntensity,
			Color:     white,
			Position:  geom.Vec3{pivot[0] + po[0], pivot[1] + po[1], pivot[2] + po[2]},
			Attached:  true,
		},
		{
			Kind:      Directional,
			Intensity: c.opts.DirectionalIntensity,
			Color:     white,
			Position:  geom.Vec3{pivot[0] + do[0], pivot[1] + do[1], pivot[2] + do[2]},
		},
	}
}
