package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Input receives the events polled each frame.
type Input interface {
	PointerDown(x, y float64)
	PointerMove(x, y float64)
	PointerUp()
	Zoom(delta float64)
	Resize(width, height int)
}

// Poller turns raylib's polled input state into Input events.
type Poller struct {
	ZoomStep float64
	last     rl.Vector2
	down     bool
}

// NewPoller returns a poller where one wheel notch changes zoom by zoomStep.
func NewPoller(zoomStep float64) *Poller {
	return &Poller{ZoomStep: zoomStep}
}

// Poll reads this frame's input and forwards it to in.
func (p *Poller) Poll(in Input) {
	if rl.IsWindowResized() {
		in.Resize(rl.GetScreenWidth(), rl.GetScreenHeight())
	}

	pos := rl.GetMousePosition()
	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		p.down = true
		in.PointerDown(float64(pos.X), float64(pos.Y))
	case p.down && rl.IsMouseButtonReleased(rl.MouseLeftButton):
		p.down = false
		in.PointerUp()
	case p.down && pos != p.last:
		in.PointerMove(float64(pos.X), float64(pos.Y))
	}
	p.last = pos

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		in.Zoom(float64(wheel) * p.ZoomStep)
	}
}
