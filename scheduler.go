package kaleido

import "time"

// frameLoop is one run of a layer's animation. A new loop is created for
// every start, so a config swap is always a restart and never an edit of a
// running loop.
type frameLoop struct {
	cfg       LayerConfig
	cancelled bool
}

// scheduler paces one layer's animation. It holds at most one active loop.
// The host calls tick once per display frame; the scheduler decides whether
// that tick is due for a new frame.
type scheduler struct {
	loop     *frameLoop
	interval time.Duration
	lastDraw time.Time

	state *LayerState
	// render draws one frame and reports whether pixels changed.
	render func(cfg *LayerConfig, st *LayerState) bool

	stepped  uint64 // ticks that advanced the animation
	rendered uint64 // steps whose render call drew
	skipped  uint64 // ticks that arrived before the frame interval elapsed
}

func newScheduler(st *LayerState, render func(cfg *LayerConfig, st *LayerState) bool) *scheduler {
	return &scheduler{interval: FrameInterval, state: st, render: render}
}

// start replaces any running loop with one driving cfg. A zero speed is an
// explicit pause: the scheduler stays stopped and no frame is requested.
func (s *scheduler) start(cfg LayerConfig) {
	s.stop()
	if cfg.Speed == 0 {
		return
	}
	s.loop = &frameLoop{cfg: cfg}
}

// stop cancels the running loop. Calling it while stopped does nothing.
func (s *scheduler) stop() {
	if s.loop == nil {
		return
	}
	s.loop.cancelled = true
	s.loop = nil
}

// running reports whether a loop is active.
func (s *scheduler) running() bool {
	return s.loop != nil
}

// tick is one frame opportunity at time now. It reports whether the
// animation advanced.
func (s *scheduler) tick(now time.Time) bool {
	l := s.loop
	if l == nil || l.cancelled {
		return false
	}

	if s.lastDraw.IsZero() {
		s.lastDraw = now
	} else {
		elapsed := now.Sub(s.lastDraw)
		if elapsed <= s.interval {
			s.skipped++
			return false
		}
		// Carry the remainder so late ticks do not accumulate drift in the
		// frame cadence.
		s.lastDraw = now.Add(-(elapsed % s.interval))
	}

	advanceAngle(s.state, &l.cfg)
	updateDrift(s.state, &l.cfg, now)
	s.state.Frames++
	s.stepped++
	if s.render != nil && s.render(&l.cfg, s.state) {
		s.rendered++
	}
	return true
}
