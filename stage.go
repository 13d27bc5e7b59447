package kaleido

import (
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// LayerCount is the number of layers a Stage stacks.
const LayerCount = 2

// stageRegion is the shared host area all layers of a Stage cover.
type stageRegion struct {
	w, h, dpr float64
}

func (r *stageRegion) Size() (float64, float64) { return r.w, r.h }
func (r *stageRegion) DeviceScaleFactor() float64 {
	return r.dpr
}

// Stage hosts two layers in one window. It implements ebiten.Game: Layout
// tracks the window size, Update paces the layers, Draw composites them
// with their blend modes. Layer 1 is drawn first, layer 2 on top.
//
// Resize notifications are coalesced: any number of size changes between
// two Updates rebuild each layer surface once.
type Stage struct {
	// ClearColor fills the background behind the layers. The zero value
	// leaves it transparent.
	ClearColor Color
	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir string
	// OnUpdate, when set, runs every Update before the layers tick.
	// Returning an error (e.g. ebiten.Termination) ends the game loop.
	OnUpdate func() error
	// Now supplies the frame time. Nil uses time.Now.
	Now func() time.Time
	// DeviceScale supplies the device scale factor at Layout time. Nil
	// asks the current monitor.
	DeviceScale func() float64

	layers [LayerCount]*Layer
	region stageRegion

	resizePending bool
	resizes       uint64

	comp compositor

	debug           bool
	overlay         bool
	script          *ScriptRunner
	screenshotQueue []string
}

// NewStage creates a stage with layers 1 and 2.
func NewStage() *Stage {
	s := &Stage{ScreenshotDir: "screenshots"}
	s.region.dpr = 1
	for i := range s.layers {
		s.layers[i] = NewLayer(&s.region, i+1)
	}
	return s
}

// Layer returns the layer with the given id (1 or 2), or nil.
func (s *Stage) Layer(id int) *Layer {
	if id < 1 || id > LayerCount {
		return nil
	}
	return s.layers[id-1]
}

// Layers returns the layers bottom to top. The returned slice must not be
// modified.
func (s *Stage) Layers() []*Layer {
	return s.layers[:]
}

// State returns the animation state of the layer with the given id.
func (s *Stage) State(id int) (LayerState, bool) {
	l := s.Layer(id)
	if l == nil {
		return LayerState{}, false
	}
	return l.State(), true
}

// RequestResize schedules a surface rebuild for the next Update.
func (s *Stage) RequestResize() {
	s.resizePending = true
}

// SetRegion records the host area in logical pixels and the device scale
// factor. A change schedules a resize.
func (s *Stage) SetRegion(width, height, deviceScale float64) {
	if deviceScale <= 0 {
		deviceScale = 1
	}
	if width == s.region.w && height == s.region.h && deviceScale == s.region.dpr {
		return
	}
	s.region = stageRegion{w: width, h: height, dpr: deviceScale}
	s.resizePending = true
}

// Layout implements ebiten.Game. The screen is sized in backing pixels so
// layer surfaces and the screen match one to one.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	s.SetRegion(float64(outsideWidth), float64(outsideHeight), s.deviceScale())
	return backingSize(math.Floor(s.region.w), math.Floor(s.region.h), s.region.dpr)
}

func (s *Stage) deviceScale() float64 {
	if s.DeviceScale != nil {
		return s.DeviceScale()
	}
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

func (s *Stage) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Update implements ebiten.Game.
func (s *Stage) Update() error {
	if s.resizePending {
		s.resizePending = false
		s.resizes++
		for _, l := range s.layers {
			l.Resize()
		}
	}

	if s.script != nil {
		s.script.step(s)
	}

	if s.OnUpdate != nil {
		if err := s.OnUpdate(); err != nil {
			return err
		}
	}

	var stats frameStats
	if s.debug {
		stats = s.collectStats()
	}

	now := s.now()
	for _, l := range s.layers {
		l.Tick(now)
	}

	if s.debug {
		s.debugLog(stats)
	}
	return nil
}

// Draw implements ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	s.comp.composite(screen, s.ClearColor, s.layers[:])
	if s.overlay {
		s.drawOverlay(screen)
	}
	s.flushScreenshots(screen)
}

// SetDebugMode enables per-frame statistics on the debug log level and the
// on-screen overlay.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
	s.overlay = enabled
}

// SetOverlay shows or hides the on-screen FPS and layer overlay.
func (s *Stage) SetOverlay(enabled bool) {
	s.overlay = enabled
}

// Overlay reports whether the overlay is shown.
func (s *Stage) Overlay() bool {
	return s.overlay
}

// Dispose stops and releases both layers and the compositor buffers.
func (s *Stage) Dispose() {
	for _, l := range s.layers {
		l.Dispose()
	}
	s.comp.dispose()
}
