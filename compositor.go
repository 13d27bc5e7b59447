package kaleido

import "github.com/hajimehoshi/ebiten/v2"

// blendShaderSrc composites a layer (src0) over a backdrop (src1) with the
// W3C separable and non-separable blend modes. Mode holds the BlendMode
// value. Ebitengine images are premultiplied, so both inputs are
// un-premultiplied, mixed, then recombined with source-over.
const blendShaderSrc = `//kage:unit pixels
package main

var Mode int

func screenCh(b, s float) float {
	return b + s - b*s
}

func hardLightCh(b, s float) float {
	if s <= 0.5 {
		return b * 2 * s
	}
	return screenCh(b, 2*s-1)
}

func colorDodgeCh(b, s float) float {
	if b <= 0 {
		return 0
	}
	if s >= 1 {
		return 1
	}
	return min(1.0, b/(1-s))
}

func colorBurnCh(b, s float) float {
	if b >= 1 {
		return 1
	}
	if s <= 0 {
		return 0
	}
	return 1 - min(1.0, (1-b)/s)
}

func softLightCh(b, s float) float {
	if s <= 0.5 {
		return b - (1-2*s)*b*(1-b)
	}
	d := sqrt(b)
	if b <= 0.25 {
		d = ((16*b-12)*b + 4) * b
	}
	return b + (2*s-1)*(d-b)
}

func lum(c vec3) float {
	return dot(c, vec3(0.3, 0.59, 0.11))
}

func clipColor(c vec3) vec3 {
	l := lum(c)
	n := min(min(c.r, c.g), c.b)
	x := max(max(c.r, c.g), c.b)
	r := c
	if n < 0 {
		r = vec3(l) + (r-vec3(l))*l/(l-n)
	}
	if x > 1 {
		r = vec3(l) + (r-vec3(l))*(1-l)/(x-l)
	}
	return r
}

func setLum(c vec3, l float) vec3 {
	d := l - lum(c)
	return clipColor(c + vec3(d))
}

func sat(c vec3) float {
	return max(max(c.r, c.g), c.b) - min(min(c.r, c.g), c.b)
}

func setSat(c vec3, s float) vec3 {
	n := min(min(c.r, c.g), c.b)
	x := max(max(c.r, c.g), c.b)
	if x > n {
		return (c - vec3(n)) * s / (x - n)
	}
	return vec3(0)
}

func mixColor(cb, cs vec3) vec3 {
	if Mode == 1 {
		return cb * cs
	}
	if Mode == 2 {
		return cb + cs - cb*cs
	}
	if Mode == 3 {
		return vec3(hardLightCh(cs.r, cb.r), hardLightCh(cs.g, cb.g), hardLightCh(cs.b, cb.b))
	}
	if Mode == 4 {
		return min(cb, cs)
	}
	if Mode == 5 {
		return max(cb, cs)
	}
	if Mode == 6 {
		return vec3(colorDodgeCh(cb.r, cs.r), colorDodgeCh(cb.g, cs.g), colorDodgeCh(cb.b, cs.b))
	}
	if Mode == 7 {
		return vec3(colorBurnCh(cb.r, cs.r), colorBurnCh(cb.g, cs.g), colorBurnCh(cb.b, cs.b))
	}
	if Mode == 8 {
		return vec3(hardLightCh(cb.r, cs.r), hardLightCh(cb.g, cs.g), hardLightCh(cb.b, cs.b))
	}
	if Mode == 9 {
		return vec3(softLightCh(cb.r, cs.r), softLightCh(cb.g, cs.g), softLightCh(cb.b, cs.b))
	}
	if Mode == 10 {
		return abs(cb - cs)
	}
	if Mode == 11 {
		return cb + cs - 2.0*cb*cs
	}
	if Mode == 12 {
		return setLum(setSat(cs, sat(cb)), lum(cb))
	}
	if Mode == 13 {
		return setLum(setSat(cb, sat(cs)), lum(cb))
	}
	if Mode == 14 {
		return setLum(cs, lum(cb))
	}
	if Mode == 15 {
		return setLum(cb, lum(cs))
	}
	return cs
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	s := imageSrc0At(srcPos)
	b := imageSrc1At(srcPos)
	cs := vec3(0)
	if s.a > 0 {
		cs = s.rgb / s.a
	}
	cb := vec3(0)
	if b.a > 0 {
		cb = b.rgb / b.a
	}
	mixed := clamp(mixColor(cb, cs), vec3(0), vec3(1))
	// Where the backdrop is transparent the source shows unmixed.
	cr := (1-b.a)*cs + b.a*mixed
	a := s.a + b.a*(1-s.a)
	return vec4(s.a*cr+b.a*cb*(1-s.a), a)
}
`

// Lazy shader compilation. Everything here runs on the host loop goroutine.
var blendShader *ebiten.Shader

func ensureBlendShader() *ebiten.Shader {
	if blendShader == nil {
		s, err := ebiten.NewShader([]byte(blendShaderSrc))
		if err != nil {
			panic("kaleido: failed to compile blend shader: " + err.Error())
		}
		blendShader = s
	}
	return blendShader
}

// compositor stacks layer surfaces bottom to top. Modes that need the
// backdrop render through the blend shader into a second buffer, and the
// two buffers swap roles.
type compositor struct {
	backdrop *ebiten.Image
	scratch  *ebiten.Image
	w, h     int

	drawOp   ebiten.DrawImageOptions
	shaderOp ebiten.DrawRectShaderOptions
	uniforms map[string]any
}

// ensureSize (re)allocates the ping-pong buffers for a w x h target.
func (c *compositor) ensureSize(w, h int) {
	if c.backdrop != nil && c.w == w && c.h == h {
		return
	}
	c.dispose()
	c.backdrop = ebiten.NewImage(w, h)
	c.scratch = ebiten.NewImage(w, h)
	c.w, c.h = w, h
}

// composite draws layers onto dst over a background of clear.
func (c *compositor) composite(dst *ebiten.Image, clear Color, layers []*Layer) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	c.ensureSize(w, h)
	if c.uniforms == nil {
		c.uniforms = make(map[string]any, 1)
	}

	c.backdrop.Clear()
	if clear.A > 0 {
		c.backdrop.Fill(clear.toRGBA())
	}

	for _, l := range layers {
		if l == nil || l.IsDisposed() || !l.Surface().Measured() {
			continue
		}
		src := l.Surface().Image()
		sb := src.Bounds()
		mode := l.BlendMode()

		if blend, ok := mode.fixedFunction(); ok || sb.Dx() != w || sb.Dy() != h {
			// Size mismatches only happen for the frame between a host
			// resize and the layer rebuild; fall back to source-over.
			if !ok {
				blend = ebiten.BlendSourceOver
			}
			c.drawOp.GeoM.Reset()
			c.drawOp.Blend = blend
			c.backdrop.DrawImage(src, &c.drawOp)
			continue
		}

		c.uniforms["Mode"] = int(mode)
		c.shaderOp.Uniforms = c.uniforms
		c.shaderOp.Images[0] = src
		c.shaderOp.Images[1] = c.backdrop
		c.shaderOp.Blend = ebiten.BlendCopy
		c.scratch.DrawRectShader(w, h, ensureBlendShader(), &c.shaderOp)
		c.backdrop, c.scratch = c.scratch, c.backdrop
	}

	c.drawOp.GeoM.Reset()
	c.drawOp.Blend = ebiten.BlendCopy
	dst.DrawImage(c.backdrop, &c.drawOp)
	c.shaderOp.Images[0] = nil
	c.shaderOp.Images[1] = nil
}

// dispose deallocates the buffers.
func (c *compositor) dispose() {
	if c.backdrop != nil {
		c.backdrop.Deallocate()
		c.backdrop = nil
	}
	if c.scratch != nil {
		c.scratch.Deallocate()
		c.scratch = nil
	}
}
