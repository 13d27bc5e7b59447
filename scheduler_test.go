package kaleido

import (
	"math"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestScheduler returns a scheduler whose render always draws, and a
// counter of render calls.
func newTestScheduler() (*scheduler, *LayerState, *int) {
	st := &LayerState{}
	calls := 0
	s := newScheduler(st, func(*LayerConfig, *LayerState) bool {
		calls++
		return true
	})
	return s, st, &calls
}

// runTicks ticks s every step for the given span starting at epoch and
// returns the number of ticks that advanced the animation.
func runTicks(s *scheduler, step, span time.Duration) int {
	n := 0
	for t := time.Duration(0); t <= span; t += step {
		if s.tick(epoch.Add(t)) {
			n++
		}
	}
	return n
}

func TestSchedulerZeroSpeedPauses(t *testing.T) {
	s, st, calls := newTestScheduler()
	cfg := DefaultLayerConfig()
	cfg.Speed = 0
	st.Angle = 42

	s.start(cfg)
	if s.running() {
		t.Fatal("zero speed should leave the scheduler stopped")
	}
	if runTicks(s, 20*time.Millisecond, time.Second) != 0 {
		t.Error("paused scheduler should not advance")
	}
	if *calls != 0 {
		t.Errorf("render calls = %d, want 0", *calls)
	}
	if st.Angle != 42 {
		t.Errorf("Angle = %v, want 42 (unchanged)", st.Angle)
	}
}

func TestSchedulerStopHaltsAndIsIdempotent(t *testing.T) {
	s, st, _ := newTestScheduler()
	s.start(DefaultLayerConfig())
	s.tick(epoch)
	loop := s.loop

	s.stop()
	s.stop()
	if s.running() {
		t.Error("running after stop")
	}
	if !loop.cancelled {
		t.Error("stopped loop should be cancelled")
	}

	angle := st.Angle
	if s.tick(epoch.Add(time.Second)) {
		t.Error("tick after stop should not advance")
	}
	if st.Angle != angle {
		t.Errorf("Angle = %v, want %v", st.Angle, angle)
	}
}

func TestSchedulerFramePacing(t *testing.T) {
	const span = 10 * time.Second
	want := int(span / FrameInterval)
	for _, step := range []time.Duration{
		16600 * time.Microsecond, // just faster than 60 Hz
		time.Second / 120,
		time.Second / 144,
		10 * time.Millisecond,
	} {
		s, _, calls := newTestScheduler()
		s.start(DefaultLayerConfig())
		got := runTicks(s, step, span)
		if got < want-1 || got > want+1 {
			t.Errorf("tick every %v: %d frames in %v, want %d +/- 1", step, got, span, want)
		}
		if *calls != got {
			t.Errorf("tick every %v: render calls = %d, want %d", step, *calls, got)
		}
	}
}

func TestSchedulerSlowHostDrawsEveryTick(t *testing.T) {
	s, _, _ := newTestScheduler()
	s.start(DefaultLayerConfig())
	// A 30 Hz host never exceeds one frame per tick.
	got := runTicks(s, time.Second/30, time.Second)
	if got != 31 {
		t.Errorf("frames = %d, want 31", got)
	}
	if s.skipped != 0 {
		t.Errorf("skipped = %d, want 0", s.skipped)
	}
}

func TestSchedulerRestartKeepsSingleLoop(t *testing.T) {
	s, _, calls := newTestScheduler()
	cfg := DefaultLayerConfig()

	s.start(cfg)
	first := s.loop
	s.start(cfg)
	s.start(cfg)
	if !first.cancelled {
		t.Error("replaced loop should be cancelled")
	}

	got := runTicks(s, 20*time.Millisecond, time.Second)
	if got != 51 {
		t.Errorf("frames = %d, want 51 (one per tick)", got)
	}
	if *calls != got {
		t.Errorf("render calls = %d, want %d", *calls, got)
	}
}

func TestSchedulerConfigSwapIsRestart(t *testing.T) {
	s, st, _ := newTestScheduler()
	cfg := DefaultLayerConfig()
	cfg.Speed = 1
	s.start(cfg)
	s.tick(epoch)

	cfg.Speed = 10
	s.start(cfg)
	s.tick(epoch.Add(20 * time.Millisecond))

	if math.Abs(st.Angle-11) > 1e-9 {
		t.Errorf("Angle = %v, want 11", st.Angle)
	}
}

func TestSchedulerAngleStaysInRange(t *testing.T) {
	for _, dir := range []int{1, -1} {
		s, st, _ := newTestScheduler()
		cfg := DefaultLayerConfig()
		cfg.Speed = 7.3
		cfg.Direction = dir
		s.start(cfg)
		for i := 0; i < 1000; i++ {
			s.tick(epoch.Add(time.Duration(i) * 20 * time.Millisecond))
			if st.Angle < 0 || st.Angle >= 360 {
				t.Fatalf("direction %d step %d: Angle = %v, want [0, 360)", dir, i, st.Angle)
			}
		}
	}
}

func TestSchedulerFiftyFramesAtDefaultSpeed(t *testing.T) {
	s, st, _ := newTestScheduler()
	s.start(DefaultLayerConfig())
	for i := 0; i < 50; i++ {
		if !s.tick(epoch.Add(time.Duration(i) * 20 * time.Millisecond)) {
			t.Fatalf("tick %d did not advance", i)
		}
	}
	if math.Abs(st.Angle-1.0) > 1e-9 {
		t.Errorf("Angle = %v, want 1.0", st.Angle)
	}
	if st.Frames != 50 {
		t.Errorf("Frames = %d, want 50", st.Frames)
	}
}

func TestSchedulerCountsUndrawnSteps(t *testing.T) {
	st := &LayerState{}
	s := newScheduler(st, func(*LayerConfig, *LayerState) bool { return false })
	s.start(DefaultLayerConfig())
	runTicks(s, 20*time.Millisecond, 100*time.Millisecond)

	if s.stepped != 6 {
		t.Errorf("stepped = %d, want 6", s.stepped)
	}
	if s.rendered != 0 {
		t.Errorf("rendered = %d, want 0", s.rendered)
	}
	if st.Frames != 6 {
		t.Errorf("Frames = %d, want 6", st.Frames)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{725, 5},
		{-10, 350},
		{-360, 0},
		{-1e-15, 0},
	}
	for _, tt := range tests {
		if got := normalizeAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
