package kaleido

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ConfigTween animates up to 4 numeric LayerConfig fields of one layer at
// once. Create one via the convenience constructors (TweenSize, TweenSpeed,
// TweenOffset, TweenDrift) and call Update(dt) each frame. Every Update
// restarts the layer with the updated config, so a tween also resumes a
// paused layer. If the layer is disposed, the tween stops immediately.
//
// There is no global tween manager; callers call Update themselves.
type ConfigTween struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	cfg    LayerConfig
	target *Layer
	Done   bool
}

// Update advances all tweens by dt seconds, writes the values into the
// tween's config and restarts the layer with it. If the layer has been
// disposed, Done is set and the layer is left alone.
func (t *ConfigTween) Update(dt float32) {
	if t.Done {
		return
	}
	if t.target == nil || t.target.IsDisposed() {
		t.Done = true
		return
	}

	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(dt)
		*t.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	t.Done = allDone
	t.target.Animate(t.cfg)
}

// Config returns the config as of the last Update.
func (t *ConfigTween) Config() LayerConfig {
	return t.cfg
}

// newConfigTween starts from the layer's current config, or the defaults
// if it has never been animated.
func newConfigTween(l *Layer) *ConfigTween {
	cfg, ok := l.Config()
	if !ok {
		cfg = DefaultLayerConfig()
	}
	return &ConfigTween{cfg: cfg, target: l}
}

func (t *ConfigTween) add(field *float64, to float64, duration float32, fn ease.TweenFunc) {
	t.tweens[t.count] = gween.New(float32(*field), float32(to), duration, fn)
	t.fields[t.count] = field
	t.count++
}

// TweenSize animates the layer's Size to the target over duration seconds.
func TweenSize(l *Layer, to float64, duration float32, fn ease.TweenFunc) *ConfigTween {
	t := newConfigTween(l)
	t.add(&t.cfg.Size, to, duration, fn)
	return t
}

// TweenSpeed animates the layer's rotation Speed. Reaching zero leaves the
// layer paused.
func TweenSpeed(l *Layer, to float64, duration float32, fn ease.TweenFunc) *ConfigTween {
	t := newConfigTween(l)
	t.add(&t.cfg.Speed, to, duration, fn)
	return t
}

// TweenOffset animates XAxis and YAxis.
func TweenOffset(l *Layer, toX, toY float64, duration float32, fn ease.TweenFunc) *ConfigTween {
	t := newConfigTween(l)
	t.add(&t.cfg.XAxis, toX, duration, fn)
	t.add(&t.cfg.YAxis, toY, duration, fn)
	return t
}

// TweenDrift animates the drift amplitude and drift speed.
func TweenDrift(l *Layer, toDrift, toSpeed float64, duration float32, fn ease.TweenFunc) *ConfigTween {
	t := newConfigTween(l)
	t.add(&t.cfg.Drift, toDrift, duration, fn)
	t.add(&t.cfg.DriftSpeed, toSpeed, duration, fn)
	return t
}
