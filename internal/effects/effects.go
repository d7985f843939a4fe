package effects

import (
	"math"

	"github.com/ivlev/dialogvideo/internal/config"
)

// Transform is applied to an overlay before it is drawn.
type Transform struct {
	DX, DY float64 // pixel offset
	Scale  float64
	Alpha  float64 // 0..1
}

// Identity leaves the overlay untouched.
var Identity = Transform{Scale: 1, Alpha: 1}

// Effect animates an overlay over the frames since it appeared.
type Effect interface {
	At(localFrame, fps int) Transform
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(localFrame, fps int) Transform

func (f EffectFunc) At(localFrame, fps int) Transform { return f(localFrame, fps) }

// Entrance animations last half a second.
func entranceFrames(fps int) float64 {
	return float64(fps) * 0.5
}

var registry = map[string]Effect{
	"none": EffectFunc(func(int, int) Transform { return Identity }),
	"fadeIn": EffectFunc(func(f, fps int) Transform {
		t := Identity
		t.Alpha = Interpolate(float64(f), 0, entranceFrames(fps), 0, 1)
		return t
	}),
	"slideUp": EffectFunc(func(f, fps int) Transform {
		t := Identity
		t.DY = InterpolateEased(float64(f), 0, entranceFrames(fps), 60, 0, easeOutCubic)
		t.Alpha = Interpolate(float64(f), 0, entranceFrames(fps), 0, 1)
		return t
	}),
	"slideLeft": EffectFunc(func(f, fps int) Transform {
		t := Identity
		t.DX = InterpolateEased(float64(f), 0, entranceFrames(fps), 120, 0, easeOutCubic)
		t.Alpha = Interpolate(float64(f), 0, entranceFrames(fps), 0, 1)
		return t
	}),
	"zoomIn": EffectFunc(func(f, fps int) Transform {
		t := Identity
		t.Scale = InterpolateEased(float64(f), 0, entranceFrames(fps), 0.5, 1, easeInOutCubic)
		t.Alpha = Interpolate(float64(f), 0, entranceFrames(fps), 0, 1)
		return t
	}),
	"bounce": EffectFunc(func(f, fps int) Transform {
		t := Identity
		t.Scale = InterpolateEased(float64(f), 0, entranceFrames(fps), 0.3, 1, easeOutBack)
		t.Alpha = Interpolate(float64(f), 0, entranceFrames(fps)/2, 0, 1)
		return t
	}),
}

// ForAnimation returns the effect registered under name. Empty and unknown
// names fade in.
func ForAnimation(name string) Effect {
	if e, ok := registry[name]; ok {
		return e
	}
	return registry["fadeIn"]
}

// CharacterOffset returns the screen offset of a character standing on
// side at frame: it slides in from its screen edge during the first half
// second and bobs by ±3px while speaking.
func CharacterOffset(frame, fps int, side config.Side, speaking bool) (dx, dy float64) {
	from := -200.0
	if side == config.SideRight {
		from = 200
	}
	dx = Interpolate(float64(frame), 0, entranceFrames(fps), from, 0)
	if speaking {
		dy = Interpolate(math.Sin(float64(frame)*0.3), -1, 1, -3, 3)
	}
	return dx, dy
}
