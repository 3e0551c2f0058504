package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the watch view until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Aggregator == nil {
		return fmt.Errorf("watch: aggregator is required")
	}

	p := tea.NewProgram(
		New(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("watch view failed: %w", err)
	}
	return nil
}
