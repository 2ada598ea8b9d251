package ebb

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenProperty selects the Transform field a Tween animates.
type TweenProperty uint8

const (
	TweenX        TweenProperty = iota // Transform.X
	TweenY                             // Transform.Y
	TweenScaleX                        // Transform.ScaleX
	TweenScaleY                        // Transform.ScaleY
	TweenRotation                      // Transform.Rotation
	TweenPivotX                        // Transform.PivotX
	TweenPivotY                        // Transform.PivotY
)

// field returns a pointer to the selected field of t, or nil for an unknown
// property.
func (p TweenProperty) field(t *Transform) *float64 {
	switch p {
	case TweenX:
		return &t.X
	case TweenY:
		return &t.Y
	case TweenScaleX:
		return &t.ScaleX
	case TweenScaleY:
		return &t.ScaleY
	case TweenRotation:
		return &t.Rotation
	case TweenPivotX:
		return &t.PivotX
	case TweenPivotY:
		return &t.PivotY
	}
	return nil
}

// easings maps the names stored in Tween.Ease to easing functions. Names
// rather than functions are persisted so tweens survive a save/load.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// RegisterEasing makes fn available to tweens under name. Register custom
// easings before loading trees that use them.
func RegisterEasing(name string, fn ease.TweenFunc) {
	easings[name] = fn
}

// easing returns the easing registered under name, falling back to linear.
func easing(name string) ease.TweenFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return ease.Linear
}

// tickDelta is the frame duration tweens advance by when Step is zero. Run
// sets it from RunConfig.TPS.
var tickDelta float32 = 1.0 / 60

// Tween animates one property of its nearest Transformer ancestor from From
// to To over Duration seconds. It advances by Step seconds per Update (one
// tick at the driver's rate when Step is zero). A finished tween stays at To
// unless Loop is set, in which case it starts over.
//
// If the target node is disposed, the tween stops immediately.
type Tween struct {
	Base

	Property TweenProperty
	From, To float32
	Duration float32
	Ease     string
	Loop     bool
	Step     float32
	Done     bool

	tween  *gween.Tween
	target *Transform
}

// Init implements [Initer].
func (t *Tween) Init() {
	t.Ease = "linear"
}

// Setup implements [Setupper]. It binds the tween to its nearest Transformer
// ancestor and rewinds it.
func (t *Tween) Setup() {
	t.target = nil
	if tr, ok := Ancestor[Transformer](t); ok {
		t.target = tr.AsTransform()
	}
	t.Restart()
}

// Target returns the transform being animated, or nil before Setup or when
// the tween has no Transformer ancestor.
func (t *Tween) Target() *Transform {
	return t.target
}

// Restart rewinds the tween to From.
func (t *Tween) Restart() {
	t.tween = gween.New(t.From, t.To, t.Duration, easing(t.Ease))
	t.Done = false
}

// Update implements [Updater]. It advances the tween by one step and writes
// the value to the target.
func (t *Tween) Update() {
	if t.Done || t.target == nil {
		return
	}
	if t.target.IsDisposed() {
		t.Done = true
		return
	}
	if t.tween == nil {
		t.Restart()
	}
	dt := t.Step
	if dt <= 0 {
		dt = tickDelta
	}
	val, finished := t.tween.Update(dt)
	if f := t.Property.field(t.target); f != nil {
		*f = float64(val)
	}
	if finished {
		if t.Loop {
			t.Restart()
		} else {
			t.Done = true
		}
	}
}

// --- Persistence ---

// SaveNode implements [Saver].
func (t *Tween) SaveNode(w *PayloadWriter) error {
	w.WriteUint8(uint8(t.Property))
	w.WriteFloat32(t.From)
	w.WriteFloat32(t.To)
	w.WriteFloat32(t.Duration)
	w.WriteString(t.Ease)
	w.WriteBool(t.Loop)
	w.WriteFloat32(t.Step)
	return nil
}

// LoadNode implements [Loader].
func (t *Tween) LoadNode(r *PayloadReader) error {
	t.Property = TweenProperty(r.ReadUint8())
	t.From = r.ReadFloat32()
	t.To = r.ReadFloat32()
	t.Duration = r.ReadFloat32()
	t.Ease = r.ReadString()
	t.Loop = r.ReadBool()
	t.Step = r.ReadFloat32()
	return r.Err()
}
