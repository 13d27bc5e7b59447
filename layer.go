package kaleido

import "time"

// Layer is one independently animated, mirrored visual built from a single
// source image. It owns its surface, its image, its animation state and at
// most one running animation loop. Layers share nothing with each other.
//
// All methods must be called from the host loop goroutine.
type Layer struct {
	// ID identifies the layer to its host, e.g. its stacking position.
	ID int

	surface  *Surface
	source   ImageSource
	renderer quadrantRenderer
	sched    *scheduler
	state    LayerState

	cfg    LayerConfig
	hasCfg bool
	seeded bool
	// driftStart is the drift origin given to configs that carry none.
	driftStart time.Time
	disposed   bool
}

// NewLayer creates a layer bound to region. The surface is measured
// immediately; an unmeasurable region is retried on Resize.
func NewLayer(region Region, id int) *Layer {
	l := &Layer{ID: id, surface: NewSurface(region)}
	l.sched = newScheduler(&l.state, l.drawFrame)
	return l
}

// SetImage starts loading the layer's source image. Frames are skipped
// until it is ready; a failed load leaves the layer blank.
func (l *Layer) SetImage(uri string) {
	if l.disposed {
		return
	}
	l.source.SetImage(uri)
}

// Source returns the layer's image source, e.g. to set an fs.FS before
// calling SetImage.
func (l *Layer) Source() *ImageSource {
	return &l.source
}

// Animate (re)starts the layer's animation loop with cfg. Any running loop
// is stopped first. A zero Speed leaves the layer paused on its last frame.
// The first call seeds the layer angle from cfg.Angle; later calls continue
// from the current angle. A zero cfg.DriftStart is replaced by the layer's
// own drift origin, fixed on first use, so drift phase stays continuous
// across restarts.
func (l *Layer) Animate(cfg LayerConfig) {
	if l.disposed {
		return
	}
	if cfg.DriftStart.IsZero() {
		if l.driftStart.IsZero() {
			l.driftStart = time.Now()
		}
		cfg.DriftStart = l.driftStart
	}
	if !l.seeded {
		l.state.Angle = normalizeAngle(cfg.Angle)
		l.seeded = true
	}
	l.cfg = cfg
	l.hasCfg = true
	l.sched.start(cfg)
}

// Stop halts the animation loop. It is safe to call while stopped.
func (l *Layer) Stop() {
	l.sched.stop()
}

// Running reports whether an animation loop is active.
func (l *Layer) Running() bool {
	return l.sched.running()
}

// Resize re-measures the surface against its region. It reports whether
// the backing image was reallocated.
func (l *Layer) Resize() bool {
	if l.disposed {
		return false
	}
	return l.surface.Resize()
}

// Tick offers the layer a frame at time now. It reports whether the
// animation advanced.
func (l *Layer) Tick(now time.Time) bool {
	if l.disposed {
		return false
	}
	return l.sched.tick(now)
}

// State returns a copy of the engine-derived animation state.
func (l *Layer) State() LayerState {
	return l.state
}

// Config returns the config most recently passed to Animate, with its
// DriftStart filled in.
func (l *Layer) Config() (LayerConfig, bool) {
	return l.cfg, l.hasCfg
}

// BlendMode returns the blend mode of the most recent config, or
// BlendNormal before the first Animate.
func (l *Layer) BlendMode() BlendMode {
	if !l.hasCfg {
		return BlendNormal
	}
	return l.cfg.BlendMode
}

// Surface returns the layer's drawing surface.
func (l *Layer) Surface() *Surface {
	return l.surface
}

// Dispose stops the loop and releases the surface, the image and the
// offscreen buffers. The layer is inert afterwards.
func (l *Layer) Dispose() {
	if l.disposed {
		return
	}
	l.sched.stop()
	l.renderer.dispose()
	l.surface.Dispose()
	l.source.Dispose()
	l.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (l *Layer) IsDisposed() bool {
	return l.disposed
}

// drawFrame renders one frame onto the surface. Until both the surface is
// measured and the image is ready it does nothing, so the previous frame
// stays visible.
func (l *Layer) drawFrame(cfg *LayerConfig, st *LayerState) bool {
	if !l.surface.Measured() || !l.source.Ready() {
		return false
	}
	iw, ih, _ := l.source.Size()
	w, h := l.surface.Size()
	plan, ok := planQuadrant(w, h, l.surface.GeoM(), iw, ih, cfg, st)
	if !ok {
		return false
	}
	img := l.source.Image()
	if img == nil {
		return false
	}
	bw, bh := l.surface.BackingSize()
	l.renderer.render(l.surface.Image(), bw, bh, img, plan)
	return true
}
