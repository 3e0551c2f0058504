package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchSnapshot runs one aggregation in the background.
func (m Model) fetchSnapshot(ctx context.Context, generation int) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{
			snapshot:   m.aggregator.Aggregate(ctx, nil),
			generation: generation,
		}
	}
}

// scheduleTick waits for the refresh interval. A zero interval disables
// automatic refresh.
func (m Model) scheduleTick(generation int) tea.Cmd {
	if m.interval <= 0 {
		return nil
	}
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}
