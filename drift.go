package kaleido

import (
	"math"
	"time"
)

// DriftRadius is the drift displacement in logical pixels at amplitude 1.
const DriftRadius = 150

// DriftOffset returns the drift displacement after elapsed time for the
// given amplitude and angular speed (radians per second). The offset traces
// a circle of radius DriftRadius*drift, starting at the bottom (0, r).
func DriftOffset(elapsed time.Duration, drift, driftSpeed float64) Vec2 {
	t := elapsed.Seconds() * driftSpeed
	r := DriftRadius * drift
	return Vec2{X: math.Sin(t) * r, Y: math.Cos(t) * r}
}

// updateDrift recomputes the drift offsets in st for the frame at now. A
// zero amplitude snaps the offsets to the origin instead of easing back.
func updateDrift(st *LayerState, cfg *LayerConfig, now time.Time) {
	if cfg.Drift > 0 {
		off := DriftOffset(now.Sub(cfg.DriftStart), cfg.Drift, cfg.DriftSpeed)
		st.DriftX, st.DriftY = off.X, off.Y
		return
	}
	st.DriftX, st.DriftY = 0, 0
}
