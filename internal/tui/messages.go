package tui

import "github.com/Veraticus/kitty/internal/model"

// snapshotMsg carries a finished aggregation. generation identifies the
// refresh that started it.
type snapshotMsg struct {
	snapshot   *model.DashboardSnapshot
	generation int
}

// tickMsg triggers an automatic refresh.
type tickMsg struct {
	generation int
}
