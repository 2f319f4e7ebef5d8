package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/lorekeeper/internal/review"
)

// Run drives engine's session through the terminal UI until the author
// confirms or abandons. Background category writes are flushed before it
// returns.
func Run(ctx context.Context, engine *review.Engine, opts ...Option) (Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer engine.Close()

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(ctx, engine, cfg), programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			engine.Session().Abandon()
			return Result{Abandoned: true, Stats: engine.Stats()}, ctx.Err()
		}
		return Result{}, fmt.Errorf("review UI failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return Result{}, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Result(), nil
}
