// Package render defines the capability set the viewer needs from a rasterizer and
// provides the raylib implementation.
package render

import (
	"imprint-viewer/internal/framing"
	"imprint-viewer/internal/geom"
	"imprint-viewer/internal/scene"
)

// Renderer draws a composed scene from a camera. Implementations own any GPU resources
// derived from the scene and release them when a different scene is rendered.
type Renderer interface {
	// SetViewportSize sets the drawable area in pixels.
	SetViewportSize(width, height int)
	// Render draws sc, which may be nil for an empty scene.
	Render(sc *scene.Composed, cam Camera)
	// Close releases all resources.
	Close()
}

// Camera is a perspective camera. FovY is in degrees.
type Camera struct {
	Position geom.Vec3
	Target   geom.Vec3
	Up       geom.Vec3
	FovY     float64
	Aspect   float64
	Near     float64
	Far      float64
}

// NewPerspectiveCamera returns a Y-up camera at the origin looking down -Z.
func NewPerspectiveCamera(fov, aspect, near, far float64) Camera {
	return Camera{
		Target: geom.Vec3{0, 0, -1},
		Up:     geom.Vec3{0, 1, 0},
		FovY:   fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

// LookAt moves the camera to pos and aims it at target.
func (c *Camera) LookAt(pos, target geom.Vec3) {
	c.Position = pos
	c.Target = target
}

// SetViewport updates the aspect ratio and field of view from v.
func (c *Camera) SetViewport(v framing.Viewport) {
	c.Aspect = v.Aspect()
	if v.FieldOfViewDegrees > 0 {
		c.FovY = v.FieldOfViewDegrees
	}
}
