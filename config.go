package kaleido

import (
	"math"
	"time"
)

// LayerConfig is the caller-owned description of how a layer moves. It is
// passed by value to Layer.Animate; the engine never writes back into it.
// Values are not validated: a non-positive Size or a Direction outside
// {-1, +1} produces undefined visuals, not an error.
type LayerConfig struct {
	// Speed is the rotation step in degrees per drawn frame. Zero pauses.
	Speed float64 `toml:"speed" json:"speed"`
	// Size scales the image relative to its quadrant.
	Size float64 `toml:"size" json:"size"`
	// XAxis and YAxis offset the image from the quadrant center by value/10
	// logical pixels.
	XAxis float64 `toml:"xaxis" json:"xaxis"`
	YAxis float64 `toml:"yaxis" json:"yaxis"`
	// Drift is the amplitude of the circular drift. Zero disables it.
	Drift      float64 `toml:"drift" json:"drift"`
	DriftSpeed float64 `toml:"driftSpeed" json:"driftSpeed"`
	// Direction is +1 (clockwise) or -1.
	Direction int `toml:"direction" json:"direction"`
	// Angle is the starting angle in degrees for the first Animate call on
	// a layer.
	Angle     float64   `toml:"angle" json:"angle"`
	BlendMode BlendMode `toml:"blendMode" json:"blendMode"`

	// DriftStart is the phase origin of the drift oscillation. It is fixed
	// when the config is created and never reset, so drift phase stays
	// continuous across pause, resume and restarts with copies of the
	// config. Left zero, Layer.Animate fills in the layer's own origin.
	DriftStart time.Time `toml:"-" json:"-"`
	// DriftEnabled records the state of a drift toggle in a control UI. The
	// engine keys drift on Drift > 0 alone.
	DriftEnabled bool `toml:"driftEnabled" json:"driftEnabled"`
}

// DefaultLayerConfig returns the stock layer configuration with DriftStart
// stamped to now.
func DefaultLayerConfig() LayerConfig {
	return LayerConfig{
		Speed:      0.02,
		Size:       0.3,
		XAxis:      1000,
		YAxis:      1000,
		Drift:      0,
		DriftSpeed: 0.1,
		Direction:  1,
		Angle:      0,
		BlendMode:  BlendNormal,
		DriftStart: time.Now(),
	}
}

// LayerState holds the values the engine derives while animating a layer.
// Read it with Layer.State.
type LayerState struct {
	// Angle is the current rotation in degrees, always in [0, 360).
	Angle float64
	// DriftX and DriftY are the current drift offsets in logical pixels.
	DriftX, DriftY float64
	// Frames counts the animation steps taken since the layer was created.
	// A step is taken on every eligible tick, even while the image is still
	// loading and nothing can be drawn.
	Frames uint64
}

// normalizeAngle wraps degrees into [0, 360). Unlike a bare remainder it
// keeps negative steps (direction -1) inside the range.
func normalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		// -tiny + 360 rounds to 360.
		a = 0
	}
	return a
}

// advanceAngle applies one frame of rotation to the state.
func advanceAngle(st *LayerState, cfg *LayerConfig) {
	st.Angle = normalizeAngle(st.Angle + cfg.Speed*float64(cfg.Direction))
}
