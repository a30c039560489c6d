package overlay

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh the FPS text every N frames to reduce allocations.
	updateInterval = 30
)

// Overlay draws the notice board bottom-left and, optionally, an FPS counter top-right.
type Overlay struct {
	ShowFPS    bool
	board      *Board
	frameCount uint32
	fpsText    string
}

// New returns an overlay reading notices from board.
func New(board *Board, showFPS bool) *Overlay {
	return &Overlay{ShowFPS: showFPS, board: board}
}

// Draw renders the overlay in screen space. Call after the 3D pass.
func (o *Overlay) Draw() {
	o.frameCount++
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())

	if o.ShowFPS {
		if o.fpsText == "" || o.frameCount%updateInterval == 0 {
			o.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		w := rl.MeasureText(o.fpsText, fontSize)
		rl.DrawText(o.fpsText, screenW-w-padding, padding, fontSize, rl.Green)
	}

	if o.board == nil {
		return
	}
	notices := o.board.Active()
	y := screenH - padding - int32(len(notices))*lineHeight
	for _, n := range notices {
		c := rl.RayWhite
		if n.Error {
			c = rl.Red
		}
		rl.DrawText(n.Text, padding, y, fontSize, c)
		y += lineHeight
	}
}
