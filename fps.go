package kaleido

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// overlayText renders the FPS/TPS line and one status line per layer.
func (s *Stage) overlayText(fps, tps float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FPS: %.1f\nTPS: %.1f\n", fps, tps)
	for _, l := range s.layers {
		st := l.State()
		state := "paused"
		if l.Running() {
			state = "running"
		}
		ready := "loading"
		switch {
		case l.source.Ready():
			ready = "ready(" + l.source.Format() + ")"
		case l.source.Err() != nil:
			ready = "failed"
		}
		fmt.Fprintf(&b, "L%d %s %s %.2fdeg %s\n", l.ID, state, ready, st.Angle, l.BlendMode())
	}
	return b.String()
}

// drawOverlay prints the overlay on a translucent panel in the top-left
// corner.
func (s *Stage) drawOverlay(screen *ebiten.Image) {
	text := s.overlayText(ebiten.ActualFPS(), ebiten.ActualTPS())
	lines := strings.Count(text, "\n")
	// ebitenutil.DebugPrint uses a 6x16 glyph cell.
	w, h := 6*longestLine(text)+8, 16*lines+4
	panel := screen.SubImage(screen.Bounds().Intersect(image.Rect(0, 0, w, h))).(*ebiten.Image)
	panel.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(screen, text)
}

func longestLine(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		n = max(n, len([]rune(line)))
	}
	return n
}
