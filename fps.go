package ebb

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPS is an overlay node that prints the current TPS and FPS at (X, Y) in
// screen pixels. The text is refreshed every ~0.5 seconds of ticks.
type FPS struct {
	Base

	X, Y int

	elapsed float32
	text    string
}

// Update implements [Updater].
func (f *FPS) Update() {
	f.elapsed += tickDelta
	if f.text != "" && f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0
	f.text = fmt.Sprintf("TPS: %.1f\nFPS: %.1f", ebiten.ActualTPS(), ebiten.ActualFPS())
}

// Draw implements [Drawer].
func (f *FPS) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, f.text, f.X, f.Y)
}

// SaveNode implements [Saver].
func (f *FPS) SaveNode(w *PayloadWriter) error {
	w.WriteInt32(int32(f.X))
	w.WriteInt32(int32(f.Y))
	return nil
}

// LoadNode implements [Loader].
func (f *FPS) LoadNode(r *PayloadReader) error {
	f.X = int(r.ReadInt32())
	f.Y = int(r.ReadInt32())
	return r.Err()
}
