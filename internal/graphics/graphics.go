package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Open creates a resizable window. Frames follow the display's vsync; there is no
// frame-rate cap of our own.
func Open(title string, width, height int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(width), int32(height), title)
}

// Close destroys the window.
func Close() {
	rl.CloseWindow()
}

// Run is the frame loop. Each frame it calls update (input), then clears the screen and calls
// draw inside BeginDrawing/EndDrawing. It returns when the window is closed.
func Run(update, draw func()) {
	for !rl.WindowShouldClose() {
		update()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
