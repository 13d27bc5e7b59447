package kaleido

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the composited frame. It is taken
// at the end of the next Draw and written to ScreenshotDir as
// <timestamp>_<label>.png.
func (s *Stage) Screenshot(label string) {
	s.screenshotQueue = append(s.screenshotQueue, label)
}

// flushScreenshots writes every queued screenshot of screen. Failures are
// logged; the queue is emptied either way.
func (s *Stage) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshotQueue) == 0 {
		return
	}
	img := captureNRGBA(screen)
	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.screenshotQueue {
		path, err := saveScreenshot(s.ScreenshotDir, stamp, label, img)
		if err != nil {
			Logger().Warn("kaleido: screenshot failed", "label", label, "err", err)
			continue
		}
		Logger().Info("kaleido: screenshot saved", "path", path)
	}
	s.screenshotQueue = s.screenshotQueue[:0]
}

// captureNRGBA reads img back from the GPU as straight-alpha NRGBA.
func captureNRGBA(img *ebiten.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	img.ReadPixels(out.Pix)
	unpremultiply(out.Pix)
	return out
}

// unpremultiply converts premultiplied RGBA bytes to straight alpha in
// place.
func unpremultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := int(pix[i+3])
		if a == 0 || a == 255 {
			continue
		}
		pix[i] = uint8(min(int(pix[i])*255/a, 255))
		pix[i+1] = uint8(min(int(pix[i+1])*255/a, 255))
		pix[i+2] = uint8(min(int(pix[i+2])*255/a, 255))
	}
}

// saveScreenshot writes img to dir/<stamp>_<label>.png, creating dir.
func saveScreenshot(dir, stamp, label string, img image.Image) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, stamp+"_"+sanitizeLabel(label)+".png")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// sanitizeLabel keeps letters, digits, '-' and '.', replaces everything
// else with '_', and falls back to "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
