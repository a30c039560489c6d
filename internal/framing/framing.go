// Package framing picks a camera distance and height that fit a mesh of arbitrary size
// into a perspective viewport with margin.
package framing

import (
	"math"

	"imprint-viewer/internal/geom"
)

// margin keeps the mesh away from the viewport edges.
const margin = 1.5

// DefaultMinRadius is used when the caller does not configure a minimum.
const DefaultMinRadius = 1.0

// Viewport is the drawable area and vertical field of view.
type Viewport struct {
	Width              float64
	Height             float64
	FieldOfViewDegrees float64
}

// Aspect returns Width/Height, or 1 when either side is not positive.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// Framing is the orbit radius and camera height above the pivot.
type Framing struct {
	Radius float64
	Height float64
}

// Compute frames box in viewport. The result always has Radius >= minRadius > 0 and Height >= 0.
// A degenerate box, or a viewport that would produce a non-finite distance, yields minRadius.
func Compute(box geom.BoundingBox, viewport Viewport, minRadius float64) Framing {
	if minRadius <= 0 || math.IsNaN(minRadius) {
		minRadius = DefaultMinRadius
	}
	f := Framing{Radius: minRadius}
	if geom.CheckDegenerate(box) != nil {
		return f
	}

	fov := viewport.FieldOfViewDegrees
	if fov <= 0 || fov >= 180 {
		fov = 75
	}
	half := math.Tan(fov * math.Pi / 360)
	r := (geom.MaxDimension(box) * margin) / half / viewport.Aspect()
	if !math.IsNaN(r) && !math.IsInf(r, 0) && r > minRadius {
		f.Radius = r
	}
	if h := geom.Height(box) * margin; h > 0 && !math.IsInf(h, 0) {
		f.Height = h
	}
	return f
}
