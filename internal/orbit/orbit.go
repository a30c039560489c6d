// Package orbit owns the camera's angular state around a pivot. It arbitrates between an
// autonomous orbit and user drags, with the drag's angular velocity decaying after release.
package orbit

import (
	"math"

	"imprint-viewer/internal/framing"
	"imprint-viewer/internal/geom"
)

// Mode is the controller state.
type Mode int

const (
	// Autonomous advances the angle every tick, plus any residual drag velocity.
	Autonomous Mode = iota
	// UserDriven follows pointer moves; ticks leave the angle alone.
	UserDriven
)

func (m Mode) String() string {
	if m == UserDriven {
		return "user-driven"
	}
	return "autonomous"
}

// Velocity is the angular velocity imparted by the last drag, in radians per tick.
// AngularY spins around the vertical axis, AngularX tilts.
type Velocity struct {
	AngularX float64
	AngularY float64
}

// Params configures a Controller. Out-of-range fields take the values of DefaultParams,
// except OrbitSpeed, where zero disables the autonomous spin.
type Params struct {
	OrbitSpeed  float64 // radians added to the angle per autonomous tick
	Sensitivity float64 // radians per dragged pixel
	Decay       float64 // per-tick velocity multiplier, in [0, 1)
	Epsilon     float64 // velocity magnitude treated as zero
	Zoom        float64
	ZoomMin     float64
	ZoomMax     float64
	MaxTilt     float64 // tilt is clamped to [-MaxTilt, MaxTilt]
}

// DefaultParams returns the stock orbit tuning.
func DefaultParams() Params {
	return Params{
		OrbitSpeed:  0.0075,
		Sensitivity: 0.01,
		Decay:       0.95,
		Epsilon:     1e-4,
		Zoom:        1,
		ZoomMin:     0.5,
		ZoomMax:     5,
		MaxTilt:     math.Pi / 6,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Sensitivity <= 0 {
		p.Sensitivity = d.Sensitivity
	}
	if p.Decay < 0 || p.Decay >= 1 {
		p.Decay = d.Decay
	}
	if p.Epsilon <= 0 {
		p.Epsilon = d.Epsilon
	}
	if p.ZoomMin <= 0 {
		p.ZoomMin = d.ZoomMin
	}
	if p.ZoomMax < p.ZoomMin {
		p.ZoomMax = math.Max(d.ZoomMax, p.ZoomMin)
	}
	if p.Zoom <= 0 {
		p.Zoom = d.Zoom
	}
	if p.MaxTilt <= 0 || p.MaxTilt >= math.Pi/2 {
		p.MaxTilt = d.MaxTilt
	}
	return p
}

// State is a snapshot of the controller for inspection.
type State struct {
	Angle    float64
	Tilt     float64
	Radius   float64
	Height   float64
	Zoom     float64
	Mode     Mode
	Velocity Velocity
}

// Controller is not safe for concurrent use; drive it from the frame loop.
type Controller struct {
	p Params

	angle  float64
	tilt   float64
	radius float64
	height float64
	zoom   float64
	mode   Mode
	vel    Velocity
	pivot  geom.Vec3

	lastX, lastY float64
}

// New returns an autonomous controller at angle zero with the minimum framing.
func New(p Params) *Controller {
	p = p.withDefaults()
	return &Controller{
		p:      p,
		radius: framing.DefaultMinRadius,
		zoom:   clamp(p.Zoom, p.ZoomMin, p.ZoomMax),
	}
}

// State returns the current orbit state.
func (c *Controller) State() State {
	return State{
		Angle:    c.angle,
		Tilt:     c.tilt,
		Radius:   c.radius,
		Height:   c.height,
		Zoom:     c.zoom,
		Mode:     c.mode,
		Velocity: c.vel,
	}
}

// Mode returns the current state machine mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetFraming replaces radius and height. Angle, tilt, velocity and mode are kept.
func (c *Controller) SetFraming(f framing.Framing) {
	if f.Radius > 0 && !math.IsInf(f.Radius, 0) {
		c.radius = f.Radius
	}
	if f.Height >= 0 && !math.IsInf(f.Height, 0) {
		c.height = f.Height
	}
}

// SetPivot sets the point the camera orbits and looks at.
func (c *Controller) SetPivot(p geom.Vec3) {
	c.pivot = p
}

// Pivot returns the current look-at point.
func (c *Controller) Pivot() geom.Vec3 { return c.pivot }

// SetZoom sets the radius divisor, clamped to the configured range.
func (c *Controller) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	c.zoom = clamp(z, c.p.ZoomMin, c.p.ZoomMax)
}

// ZoomBy adds delta to the zoom.
func (c *Controller) ZoomBy(delta float64) {
	c.SetZoom(c.zoom + delta)
}

// PointerDown starts a drag at (x, y).
func (c *Controller) PointerDown(x, y float64) {
	if !finite(x) || !finite(y) {
		return
	}
	c.mode = UserDriven
	c.lastX, c.lastY = x, y
}

// PointerMove applies the drag since the previous pointer event. Moves outside a drag are ignored.
func (c *Controller) PointerMove(x, y float64) {
	if c.mode != UserDriven || !finite(x) || !finite(y) {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y

	c.vel.AngularY = dx * c.p.Sensitivity
	c.vel.AngularX = dy * c.p.Sensitivity
	c.angle += c.vel.AngularY
	c.tilt = clamp(c.tilt+c.vel.AngularX, -c.p.MaxTilt, c.p.MaxTilt)
}

// PointerUp ends a drag; the residual velocity coasts in the autonomous mode.
func (c *Controller) PointerUp() {
	c.mode = Autonomous
}

// Tick advances the autonomous orbit by one frame. It does nothing while a drag is active.
func (c *Controller) Tick() {
	if c.mode != Autonomous {
		return
	}
	c.angle += c.p.OrbitSpeed + c.vel.AngularY
	c.tilt = clamp(c.tilt+c.vel.AngularX, -c.p.MaxTilt, c.p.MaxTilt)

	c.vel.AngularX = c.decay(c.vel.AngularX)
	c.vel.AngularY = c.decay(c.vel.AngularY)
}

func (c *Controller) decay(v float64) float64 {
	v *= c.p.Decay
	if math.Abs(v) < c.p.Epsilon {
		return 0
	}
	return v
}

// Position returns the camera position: pivot + (radius/zoom)·(cos a, ·, sin a), with the
// vertical offset height + (radius/zoom)·tan(tilt). Height does not scale with zoom.
func (c *Controller) Position() geom.Vec3 {
	r := c.radius / c.zoom
	return geom.Vec3{
		c.pivot[0] + r*math.Cos(c.angle),
		c.pivot[1] + c.height + r*math.Tan(c.tilt),
		c.pivot[2] + r*math.Sin(c.angle),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
