// Package kaleido renders kaleidoscope layers with [Ebitengine].
//
// A layer draws one source image, rotated and offset, into the top-left
// quadrant of its surface and mirrors that quadrant into the other three,
// giving a four-fold symmetric pattern. Each layer runs its own animation
// loop at a fixed frame rate: the image rotates by a per-frame step and can
// drift along a slow circle. Two layers stack on a [Stage] and are
// composited with CSS-style blend modes.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	stage := kaleido.NewStage()
//	stage.Layer(1).SetImage("assets/layer1.webp")
//	stage.Layer(1).Animate(kaleido.DefaultLayerConfig())
//	kaleido.Run(stage, kaleido.RunConfig{
//		Title: "Kaleido", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself and forward to
// [Stage.Layout], [Stage.Update] and [Stage.Draw].
//
// # Layers
//
// [Layer.Animate] starts (or restarts) a layer's loop with a [LayerConfig].
// The config is the caller's; values the engine derives while animating
// (the angle, drift offsets, frame count) live in [LayerState] and are read
// with [Layer.State] or [Stage.State]. A config with zero Speed pauses the
// layer on its last frame. [Layer.Stop] halts it.
//
// Images load in the background from a path, a file:// or http(s) URL, or
// an [io/fs.FS] set on [Layer.Source]. Frames are skipped until the image
// is ready; a failed load is logged and leaves the layer blank.
//
// # Blend modes
//
// [BlendMode] covers the sixteen separable and non-separable modes from
// the W3C compositing specification, named as in CSS mix-blend-mode.
// Normal and screen are drawn with fixed-function blending; the rest run
// through a Kage shader against the backdrop.
//
// # Tweens and scripts
//
// [TweenSize], [TweenSpeed], [TweenOffset] and [TweenDrift] animate config
// fields over time via [gween]. [LoadScript] reads a JSON script of layer
// commands, waits and screenshots for automated visual checks.
//
// # Logging
//
// The package is silent by default. Install a logger with [SetLogger] to
// see image load failures (warn) and per-frame statistics in debug mode.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package kaleido
