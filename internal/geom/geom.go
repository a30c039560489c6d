package geom

import (
	"errors"
	"math"

	vec3 "github.com/flywave/go3d/float64/vec3"
)

// Vec3 is a world-space point or direction.
type Vec3 = vec3.T

// BoundingBox is an axis-aligned box. Width is the X extent, Height the Y extent, Depth the Z extent.
type BoundingBox = vec3.Box

// degenerateEpsilon is the extent below which a box is treated as having no size.
const degenerateEpsilon = 1e-9

// ErrDegenerate reports a bounding box with zero extent on every axis.
var ErrDegenerate = errors.New("geom: degenerate bounding box")

// EmptyBox returns a box that any Extend call replaces.
func EmptyBox() BoundingBox {
	return vec3.MinBox
}

// IsEmpty reports whether no point was ever added to b.
func IsEmpty(b BoundingBox) bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Center returns the midpoint of b.
func Center(b BoundingBox) Vec3 {
	return Vec3{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent of b on each axis. Empty boxes have zero size.
func Size(b BoundingBox) Vec3 {
	if IsEmpty(b) {
		return Vec3{}
	}
	return Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Width, Height and Depth return the X, Y and Z extents.
func Width(b BoundingBox) float64  { return Size(b)[0] }
func Height(b BoundingBox) float64 { return Size(b)[1] }
func Depth(b BoundingBox) float64  { return Size(b)[2] }

// MaxDimension returns the largest extent of b.
func MaxDimension(b BoundingBox) float64 {
	s := Size(b)
	return math.Max(s[0], math.Max(s[1], s[2]))
}

// CheckDegenerate returns ErrDegenerate when b has no usable extent.
func CheckDegenerate(b BoundingBox) error {
	d := MaxDimension(b)
	if d < degenerateEpsilon || math.IsNaN(d) || math.IsInf(d, 0) {
		return ErrDegenerate
	}
	return nil
}

// Translate returns b moved by offset.
func Translate(b BoundingBox, offset Vec3) BoundingBox {
	return BoundingBox{
		Min: Vec3{b.Min[0] + offset[0], b.Min[1] + offset[1], b.Min[2] + offset[2]},
		Max: Vec3{b.Max[0] + offset[0], b.Max[1] + offset[1], b.Max[2] + offset[2]},
	}
}

// Scale returns b scaled about the origin by a positive factor s.
func Scale(b BoundingBox, s float64) BoundingBox {
	return BoundingBox{
		Min: Vec3{b.Min[0] * s, b.Min[1] * s, b.Min[2] * s},
		Max: Vec3{b.Max[0] * s, b.Max[1] * s, b.Max[2] * s},
	}
}

// ZUpToYUp maps a Z-up point (x, y, z) to the Y-up frame (x, z, -y).
func ZUpToYUp(p Vec3) Vec3 {
	return Vec3{p[0], p[2], -p[1]}
}

// BoxZUpToYUp converts b with ZUpToYUp, keeping Min <= Max on every axis.
func BoxZUpToYUp(b BoundingBox) BoundingBox {
	return BoundingBox{
		Min: Vec3{b.Min[0], b.Min[2], -b.Max[1]},
		Max: Vec3{b.Max[0], b.Max[2], -b.Min[1]},
	}
}
