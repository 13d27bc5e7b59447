package kaleido

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// drawTarget is the visible surface the renderer composites onto.
// *ebiten.Image satisfies it.
type drawTarget interface {
	Clear()
	DrawImage(src *ebiten.Image, op *ebiten.DrawImageOptions)
}

// quadrantPlan is the geometry of one seed-quadrant draw.
type quadrantPlan struct {
	// Quadrant is the top-left quarter of the surface in logical pixels.
	Quadrant Rect
	// DrawW and DrawH are the image size on screen in logical pixels.
	DrawW, DrawH float64
	// Center is where the image center lands, in logical pixels.
	Center Vec2
	// GeoM maps source image pixels to backing pixels.
	GeoM ebiten.GeoM
}

// planQuadrant lays out the image inside the top-left quadrant of a
// surfW x surfH logical surface; toBacking maps logical to backing pixels
// (see Surface.GeoM). It returns false when the quadrant or the image has
// no area.
func planQuadrant(surfW, surfH float64, toBacking ebiten.GeoM, imgW, imgH int, cfg *LayerConfig, st *LayerState) (quadrantPlan, bool) {
	q := Rect{Width: surfW / 2, Height: surfH / 2}
	if q.Empty() || imgW <= 0 || imgH <= 0 {
		return quadrantPlan{}, false
	}

	// Fit by width first, then clamp by height, keeping the aspect ratio.
	aspect := float64(imgW) / float64(imgH)
	dw := q.Width * cfg.Size
	dh := dw / aspect
	if dh > q.Height*cfg.Size {
		dh = q.Height * cfg.Size
		dw = dh * aspect
	}

	c := q.Center()
	center := Vec2{
		X: c.X + cfg.XAxis/10 + st.DriftX,
		Y: c.Y + cfg.YAxis/10 + st.DriftY,
	}

	var g ebiten.GeoM
	g.Scale(dw/float64(imgW), dh/float64(imgH))
	g.Translate(-dw/2, -dh/2)
	g.Rotate(st.Angle * math.Pi / 180)
	g.Translate(center.X, center.Y)
	g.Concat(toBacking)

	return quadrantPlan{Quadrant: q, DrawW: dw, DrawH: dh, Center: center, GeoM: g}, true
}

// seedSize returns the seed quadrant size in backing pixels. Odd surfaces
// round up so the center row and column are covered; the mirror of that
// line lands on itself.
func seedSize(backingW, backingH int) (int, int) {
	return (backingW + 1) / 2, (backingH + 1) / 2
}

// mirrorTransforms returns the four placements of the seed quadrant on a
// backingW x backingH surface: identity, mirrored across the vertical
// centerline, mirrored across the horizontal centerline, and both.
func mirrorTransforms(backingW, backingH int) [4]ebiten.GeoM {
	w, h := float64(backingW), float64(backingH)
	var m [4]ebiten.GeoM
	m[1].Scale(-1, 1)
	m[1].Translate(w, 0)
	m[2].Scale(1, -1)
	m[2].Translate(0, h)
	m[3].Scale(-1, -1)
	m[3].Translate(w, h)
	return m
}

// quadrantRenderer draws the seed quadrant into an offscreen buffer and
// stamps four mirrored copies of it onto the visible surface. Drawing the
// seed offscreen means no copy ever reads pixels another copy has written.
type quadrantRenderer struct {
	pool renderTexturePool
	seed *ebiten.Image

	imageOp  ebiten.DrawImageOptions
	mirrorOp ebiten.DrawImageOptions
}

// render draws img according to plan onto dst, whose backing size is
// backingW x backingH. It always succeeds once called; readiness checks
// happen in the caller.
func (r *quadrantRenderer) render(dst drawTarget, backingW, backingH int, img *ebiten.Image, plan quadrantPlan) {
	sw, sh := seedSize(backingW, backingH)
	seed := r.seedBuffer(sw, sh)
	seed.Clear()

	// The sub-image bounds act as the quadrant clip.
	clip := seed.SubImage(image.Rect(0, 0, sw, sh)).(*ebiten.Image)

	r.imageOp.GeoM = plan.GeoM
	r.imageOp.Filter = ebiten.FilterLinear
	r.imageOp.Blend = ebiten.BlendSourceOver
	clip.DrawImage(img, &r.imageOp)

	dst.Clear()
	for _, m := range mirrorTransforms(backingW, backingH) {
		r.mirrorOp.GeoM = m
		r.mirrorOp.Filter = ebiten.FilterNearest
		r.mirrorOp.Blend = ebiten.BlendCopy
		dst.DrawImage(clip, &r.mirrorOp)
	}
}

// seedBuffer returns an offscreen image of at least w x h pixels, keeping
// the current one while w x h stays in its size class.
func (r *quadrantRenderer) seedBuffer(w, h int) *ebiten.Image {
	if r.seed != nil {
		b := r.seed.Bounds()
		if (seedSizeClass{w: b.Dx(), h: b.Dy()}) == sizeClassOf(w, h) {
			return r.seed
		}
		r.pool.Release(r.seed)
	}
	r.seed = r.pool.Acquire(w, h)
	return r.seed
}

// dispose releases the seed buffer and the pool.
func (r *quadrantRenderer) dispose() {
	if r.seed != nil {
		r.pool.Release(r.seed)
		r.seed = nil
	}
	r.pool.Dispose()
}
