// Package tui implements kitty's live dashboard view.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/dashboard"
	"github.com/Veraticus/kitty/internal/model"
)

// Aggregator produces dashboard snapshots.
type Aggregator interface {
	Aggregate(ctx context.Context, obs dashboard.Observer) *model.DashboardSnapshot
}

// Config holds the watch view's dependencies.
type Config struct {
	Aggregator Aggregator
	Logger     *slog.Logger
	Now        func() time.Time
	KeyMap     KeyMap
	// Interval between automatic refreshes. Zero refreshes only on demand.
	Interval time.Duration
}

// Model is the bubbletea model for the watch view.
type Model struct {
	ctx        context.Context
	aggregator Aggregator
	logger     *slog.Logger
	now        func() time.Time
	cancel     context.CancelFunc
	snapshot   *model.DashboardSnapshot
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	groups     table.Model
	interval   time.Duration
	generation int
	width      int
	height     int
	loading    bool
	quitting   bool
	showHelp   bool
}

// New creates a watch model. The context bounds every aggregation it starts.
func New(ctx context.Context, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if len(cfg.KeyMap.Refresh.Keys()) == 0 {
		cfg.KeyMap = DefaultKeyMap()
	}

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = cli.InfoStyle

	t := table.New(
		table.WithColumns(groupColumns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(defaultTableHeight),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(cli.PrimaryColor).Bold(true)
	styles.Selected = styles.Selected.Foreground(cli.AccentColor)
	t.SetStyles(styles)

	return Model{
		ctx:        ctx,
		aggregator: cfg.Aggregator,
		logger:     cfg.Logger,
		now:        cfg.Now,
		keymap:     cfg.KeyMap,
		help:       help.New(),
		spinner:    s,
		groups:     t,
		interval:   cfg.Interval,
		generation: 1,
		loading:    true,
	}
}

// Init starts the first aggregation. New already counts it as generation 1.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSnapshot(m.ctx, m.generation))
}

// refresh begins a new generation and cancels the one in flight.
func (m *Model) refresh() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	m.generation++
	m.loading = true

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.logger.Debug("Refreshing dashboard", "generation", m.generation)
	return tea.Batch(m.spinner.Tick, m.fetchSnapshot(ctx, m.generation))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.groups.SetColumns(groupColumns(msg.Width))
		return m, nil

	case snapshotMsg:
		return m.applySnapshot(msg)

	case tickMsg:
		if m.quitting || msg.generation != m.generation || m.loading {
			return m, nil
		}
		return m, m.refresh()

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		return m.quit()
	case key.Matches(msg, m.keymap.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.groups, cmd = m.groups.Update(msg)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancel != nil {
		m.cancel()
	}
	return m, tea.Quit
}

// applySnapshot ignores results from superseded generations and anything
// arriving after the view was closed.
func (m Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if m.quitting || msg.generation != m.generation {
		m.logger.Debug("Discarding stale snapshot",
			"generation", msg.generation,
			"current", m.generation)
		return m, nil
	}
	if msg.snapshot == nil {
		m.loading = false
		return m, m.scheduleTick(m.generation)
	}

	m.snapshot = msg.snapshot
	m.loading = false
	m.groups.SetRows(groupRows(msg.snapshot, m.now()))
	return m, m.scheduleTick(m.generation)
}

// Snapshot returns the snapshot currently on screen, if any.
func (m Model) Snapshot() *model.DashboardSnapshot {
	return m.snapshot
}

// Generation returns the number of refreshes started so far.
func (m Model) Generation() int {
	return m.generation
}
