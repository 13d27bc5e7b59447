package kaleido

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title         string
	Width, Height int
	// ShowFPS starts with the FPS and layer overlay visible.
	ShowFPS bool
	// Debug enables debug mode (see Stage.SetDebugMode).
	Debug bool
}

// Run opens a resizable window and drives stage until the window closes or
// stage.OnUpdate returns an error. ebiten.Termination ends the loop
// without an error. Update runs once per display frame so each layer sees
// one tick per frame, the way a browser animation frame would.
func Run(stage *Stage, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("kaleido: invalid window size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	if cfg.Debug {
		stage.SetDebugMode(true)
	}
	if cfg.ShowFPS {
		stage.SetOverlay(true)
	}

	defer stage.Dispose()
	if err := ebiten.RunGame(stage); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("kaleido: run: %w", err)
	}
	return nil
}
