package kaleido

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// FrameRate is the maximum number of frames a layer draws per second.
const FrameRate = 60

// FrameInterval is the minimum wall-clock spacing between two drawn frames
// of the same layer.
const FrameInterval = time.Second / FrameRate

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Vec2 is a 2D vector used for offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with its origin at the top-left and Y
// increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// BlendMode selects how a layer merges with the layers beneath it. The
// values follow the W3C compositing and blending modes, in the order the
// CSS mix-blend-mode property lists them.
type BlendMode uint8

const (
	BlendNormal     BlendMode = iota // source-over
	BlendMultiply                    // source * backdrop; only darkens
	BlendScreen                      // 1 - (1-src)*(1-dst); only brightens
	BlendOverlay                     // hard-light with layers swapped
	BlendDarken                      // per-channel minimum
	BlendLighten                     // per-channel maximum
	BlendColorDodge                  // brightens backdrop toward source
	BlendColorBurn                   // darkens backdrop toward source
	BlendHardLight                   // multiply or screen keyed on source
	BlendSoftLight                   // soft version of hard-light
	BlendDifference                  // |backdrop - source|
	BlendExclusion                   // lower-contrast difference
	BlendHue                         // source hue, backdrop saturation and luminosity
	BlendSaturation                  // source saturation, backdrop hue and luminosity
	BlendColor                       // source hue and saturation, backdrop luminosity
	BlendLuminosity                  // source luminosity, backdrop hue and saturation

	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	BlendNormal:     "normal",
	BlendMultiply:   "multiply",
	BlendScreen:     "screen",
	BlendOverlay:    "overlay",
	BlendDarken:     "darken",
	BlendLighten:    "lighten",
	BlendColorDodge: "color-dodge",
	BlendColorBurn:  "color-burn",
	BlendHardLight:  "hard-light",
	BlendSoftLight:  "soft-light",
	BlendDifference: "difference",
	BlendExclusion:  "exclusion",
	BlendHue:        "hue",
	BlendSaturation: "saturation",
	BlendColor:      "color",
	BlendLuminosity: "luminosity",
}

// ErrUnknownBlendMode is returned by ParseBlendMode for names outside the
// sixteen supported modes.
var ErrUnknownBlendMode = errors.New("kaleido: unknown blend mode")

// BlendModes returns all supported blend modes in their canonical order.
func BlendModes() []BlendMode {
	modes := make([]BlendMode, blendModeCount)
	for i := range modes {
		modes[i] = BlendMode(i)
	}
	return modes
}

// String returns the CSS name of the blend mode.
func (b BlendMode) String() string {
	if b < blendModeCount {
		return blendModeNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(b))
}

// ParseBlendMode returns the blend mode with the given CSS name.
func ParseBlendMode(name string) (BlendMode, error) {
	for i, n := range blendModeNames {
		if n == name {
			return BlendMode(i), nil
		}
	}
	return BlendNormal, fmt.Errorf("%w: %q", ErrUnknownBlendMode, name)
}

// MarshalText implements encoding.TextMarshaler so configs carry blend modes
// by name.
func (b BlendMode) MarshalText() ([]byte, error) {
	if b >= blendModeCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlendMode, uint8(b))
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlendMode) UnmarshalText(text []byte) error {
	m, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*b = m
	return nil
}

// Next returns the following blend mode, wrapping after luminosity.
func (b BlendMode) Next() BlendMode {
	return (b + 1) % blendModeCount
}

// fixedFunction reports whether the mode can be expressed exactly with
// Ebitengine's fixed-function blend factors on premultiplied colors, and
// returns that blend. Every other mode reads the backdrop in the compositor
// shader. Multiply is not listed: the factor form drops the src*(1-dstAlpha)
// term and is only exact over an opaque backdrop.
func (b BlendMode) fixedFunction() (ebiten.Blend, bool) {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver, true
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}, true
	default:
		return ebiten.Blend{}, false
	}
}

// toRGBA converts a Color to a premultiplied color.Color for image.Fill.
func (c Color) toRGBA() colorRGBA {
	return colorRGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// colorRGBA implements the color.Color interface for image.Fill.
type colorRGBA struct {
	R, G, B, A uint8
}

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	a = uint32(c.A) * 0x101
	return
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
