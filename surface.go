package kaleido

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Region is the host area a Surface is bound to. Size reports the logical
// (device-independent) size; DeviceScaleFactor reports how many backing
// pixels make up one logical pixel.
type Region interface {
	Size() (width, height float64)
	DeviceScaleFactor() float64
}

// Surface is a drawing surface bound to a Region. Drawing happens in
// logical coordinates; the backing image is logical size times the device
// scale factor. A Surface whose region has never been measurable has no
// backing image and ignores draws.
type Surface struct {
	region Region
	image  *ebiten.Image

	width, height      float64 // logical, floored
	scale              float64
	backingW, backingH int
}

// NewSurface creates a surface for region and performs an initial Setup.
func NewSurface(region Region) *Surface {
	s := &Surface{region: region, scale: 1}
	s.Setup()
	return s
}

// Setup measures the region and sizes the backing image. A region with zero
// width or height leaves the surface untouched; the next Resize retries.
// The backing image is only reallocated when its pixel size changes, so
// repeated calls with the same bounds are free. Setup reports whether the
// backing image was (re)allocated, which discards its pixels.
func (s *Surface) Setup() bool {
	if s.region == nil {
		return false
	}
	rw, rh := s.region.Size()
	w, h := math.Floor(rw), math.Floor(rh)
	if w <= 0 || h <= 0 {
		return false
	}
	dpr := s.region.DeviceScaleFactor()
	if dpr <= 0 {
		dpr = 1
	}
	bw, bh := backingSize(w, h, dpr)

	s.width, s.height = w, h
	s.scale = dpr

	if s.image != nil && bw == s.backingW && bh == s.backingH {
		return false
	}
	if s.image != nil {
		s.image.Deallocate()
	}
	s.image = ebiten.NewImage(bw, bh)
	s.backingW, s.backingH = bw, bh
	Logger().Debug("kaleido: surface rebuilt",
		"logical_w", w, "logical_h", h, "scale", dpr, "backing_w", bw, "backing_h", bh)
	return true
}

// Resize re-measures the region. It is an alias for Setup.
func (s *Surface) Resize() bool {
	return s.Setup()
}

// backingSize converts a floored logical size to backing pixels, never
// returning less than one pixel per side.
func backingSize(w, h, dpr float64) (int, int) {
	bw := int(w * dpr)
	bh := int(h * dpr)
	return max(bw, 1), max(bh, 1)
}

// Measured reports whether the surface has a backing image.
func (s *Surface) Measured() bool {
	return s.image != nil
}

// Image returns the backing image, or nil before the first successful
// Setup.
func (s *Surface) Image() *ebiten.Image {
	return s.image
}

// Size returns the logical size.
func (s *Surface) Size() (width, height float64) {
	return s.width, s.height
}

// Scale returns the device scale factor applied to logical coordinates.
func (s *Surface) Scale() float64 {
	return s.scale
}

// BackingSize returns the backing image size in pixels.
func (s *Surface) BackingSize() (width, height int) {
	return s.backingW, s.backingH
}

// GeoM returns the logical-to-backing transform. Layer drawing composes it
// after the image placement.
func (s *Surface) GeoM() ebiten.GeoM {
	var g ebiten.GeoM
	g.Scale(s.scale, s.scale)
	return g
}

// Dispose deallocates the backing image. The surface can be measured again
// with Setup.
func (s *Surface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
	s.backingW, s.backingH = 0, 0
}
