package ebb

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Window is a node that keeps the window title and size in the tree, so a
// saved scene carries them and a loaded one restores them. Place it directly
// under the scene root; [Run] and the running game read the first one they
// find there. Zero fields leave the corresponding setting alone.
type Window struct {
	Base

	Title         string
	Width, Height int
}

// applyWindow pushes settings to the running window.
var applyWindow = func(title string, width, height int) {
	if title != "" {
		ebiten.SetWindowTitle(title)
	}
	if width > 0 && height > 0 {
		ebiten.SetWindowSize(width, height)
	}
}

// NewWindow creates a Window under parent holding cfg's title and size.
func NewWindow(parent Node, cfg RunConfig) *Window {
	w := New[Window](parent)
	w.Title, w.Width, w.Height = cfg.Title, cfg.Width, cfg.Height
	return w
}

// Setup implements [Setupper]. It applies the settings, which also happens
// after every scene load.
func (w *Window) Setup() {
	applyWindow(w.Title, w.Width, w.Height)
}

// Override returns cfg with the window's non-zero settings in place of its
// own.
func (w *Window) Override(cfg RunConfig) RunConfig {
	if w.Title != "" {
		cfg.Title = w.Title
	}
	if w.Width > 0 && w.Height > 0 {
		cfg.Width, cfg.Height = w.Width, w.Height
	}
	return cfg
}

// SaveNode implements [Saver].
func (w *Window) SaveNode(pw *PayloadWriter) error {
	pw.WriteInt32(int32(w.Width))
	pw.WriteInt32(int32(w.Height))
	pw.WriteString(w.Title)
	return nil
}

// LoadNode implements [Loader].
func (w *Window) LoadNode(r *PayloadReader) error {
	width, height := r.ReadInt32(), r.ReadInt32()
	title := r.ReadString()
	if err := r.Err(); err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("ebb: window size %dx%d", width, height)
	}
	w.Width, w.Height, w.Title = int(width), int(height), title
	return nil
}

// windowOf returns the first Window directly under root.
func windowOf(root Node) (*Window, bool) {
	if root == nil {
		return nil, false
	}
	return FirstChildOf[*Window](root)
}
