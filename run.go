package ebb

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pelletier/go-toml/v2"
)

// RunConfig configures the window and loop started by [Run].
type RunConfig struct {
	Title      string `toml:"title"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	TPS        int    `toml:"tps"`      // ticks per second; 0 keeps Ebitengine's default (60)
	ShowFPS    bool   `toml:"show_fps"` // draw an FPS overlay above the scene
	ClearColor Color  `toml:"clear_color"`
}

// DefaultRunConfig returns the configuration Run falls back to for unset
// fields.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:  "ebb",
		Width:  800,
		Height: 600,
	}
}

// ParseRunConfig decodes a TOML document into a RunConfig. Keys that are
// absent keep their DefaultRunConfig values.
//
//	title = "Spinning"
//	width = 800
//	height = 600
//	show_fps = true
//
//	[clear_color]
//	r = 0.53
//	g = 0.81
//	b = 0.92
//	a = 1
func ParseRunConfig(data []byte) (RunConfig, error) {
	cfg := DefaultRunConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse run config: %w", err)
	}
	if cfg.Width < 0 || cfg.Height < 0 || cfg.TPS < 0 {
		return RunConfig{}, fmt.Errorf("parse run config: negative size or tps")
	}
	return cfg, nil
}

// withDefaults fills zero fields from DefaultRunConfig.
func (c RunConfig) withDefaults() RunConfig {
	def := DefaultRunConfig()
	if c.Title == "" {
		c.Title = def.Title
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	return c
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
	cfg   RunConfig
	fps   *FPS
}

func (g *game) Update() error {
	if g.scene.Done() {
		return ebiten.Termination
	}
	g.scene.Update()
	if g.fps != nil {
		g.fps.Update()
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.ToRGBA())
	}
	g.scene.Draw(screen)
	if g.fps != nil {
		g.fps.Draw(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	if g.scene != nil {
		if w, ok := windowOf(g.scene.Root()); ok && w.Width > 0 && w.Height > 0 {
			return w.Width, w.Height
		}
	}
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives scene until the window is closed or
// scene.Quit is called. The scene's setup pass runs on the first tick.
// A [Window] node under the scene root overrides cfg's title and size.
//
//	scene := ebb.NewScene(nil)
//	// ... add nodes ...
//	if err := ebb.Run(scene, ebb.RunConfig{Title: "My Game"}); err != nil {
//		log.Fatal(err)
//	}
func Run(scene *Scene, cfg RunConfig) error {
	if w, ok := windowOf(scene.Root()); ok {
		cfg = w.Override(cfg)
	}
	cfg = cfg.withDefaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
		tickDelta = 1 / float32(cfg.TPS)
	}

	g := &game{scene: scene, cfg: cfg}
	if cfg.ShowFPS {
		g.fps = New[FPS](nil)
		g.fps.X, g.fps.Y = 4, 4
	}
	Logger().Info("run", "title", cfg.Title, "width", cfg.Width, "height", cfg.Height)
	return ebiten.RunGame(g)
}
