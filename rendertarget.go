package kaleido

import (
	"image"
	"math/bits"

	"github.com/hajimehoshi/ebiten/v2"
)

// seedSizeClass is a power-of-two image size.
type seedSizeClass struct {
	w, h int
}

// renderTexturePool holds seed buffers that a resize made the wrong size.
// Sizes are rounded up to powers of two, so dragging a window edge keeps
// reusing one buffer until the quadrant crosses a power-of-two boundary,
// and shrinking back finds the old buffer still here.
type renderTexturePool struct {
	idle map[seedSizeClass][]*ebiten.Image
}

func sizeClassOf(w, h int) seedSizeClass {
	return seedSizeClass{w: nextPowerOfTwo(w), h: nextPowerOfTwo(h)}
}

// Acquire returns a transparent offscreen image covering at least w x h.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	class := sizeClassOf(w, h)
	if free := p.idle[class]; len(free) > 0 {
		img := free[len(free)-1]
		p.idle[class] = free[:len(free)-1]
		// Released buffers keep their last seed.
		img.Clear()
		return img
	}
	// Unmanaged: the seed is redrawn every frame, so ebiten need not keep
	// a CPU copy for context loss.
	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, class.w, class.h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release hands img back for a later Acquire of the same size class.
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	if p.idle == nil {
		p.idle = make(map[seedSizeClass][]*ebiten.Image)
	}
	b := img.Bounds()
	class := seedSizeClass{w: b.Dx(), h: b.Dy()}
	p.idle[class] = append(p.idle[class], img)
}

// Len counts the idle buffers.
func (p *renderTexturePool) Len() int {
	n := 0
	for _, free := range p.idle {
		n += len(free)
	}
	return n
}

// Dispose frees every idle buffer.
func (p *renderTexturePool) Dispose() {
	for class, free := range p.idle {
		for _, img := range free {
			img.Deallocate()
		}
		delete(p.idle, class)
	}
}

// nextPowerOfTwo rounds n up to a power of two, with 1 as the floor.
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
