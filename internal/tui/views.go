package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/model"
)

const (
	defaultWidth       = 100
	defaultTableHeight = 10
	dateLayout         = "2006-01-02"
)

func groupColumns(width int) []table.Column {
	if width <= 0 {
		width = defaultWidth
	}
	name := width - 70
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "Group", Width: name},
		{Title: "Contribution", Width: 14},
		{Title: "Frequency", Width: 10},
		{Title: "You saved", Width: 14},
		{Title: "Next due", Width: 11},
		{Title: "Role", Width: 9},
	}
}

func groupRows(s *model.DashboardSnapshot, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(s.Groups))
	for _, g := range s.Groups {
		saved := "-"
		if total, ok := s.PerGroupContributionTotals[g.ID]; ok {
			saved = cli.FormatAmount(total)
		}
		role := "member"
		if g.IsLeader {
			role = cli.LeaderIcon + " leader"
		}
		rows = append(rows, table.Row{
			g.Name,
			cli.FormatAmount(g.SavingsAmount),
			string(g.SavingsFrequency),
			saved,
			calculator.NextDueDate(g.SavingsFrequency, now).Format(dateLayout),
			role,
		})
	}
	return rows
}

// View renders the watch screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.snapshot == nil {
		b.WriteString(m.spinner.View() + " Loading your savings...")
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keymap))
		return b.String()
	}

	b.WriteString(m.renderOverview())
	b.WriteString("\n\n")

	if len(m.snapshot.Groups) == 0 {
		b.WriteString(cli.SubtleStyle.Render("You are not a member of any group yet."))
	} else {
		b.WriteString(m.groups.View())
	}
	b.WriteString("\n")

	if loans := m.renderLoans(); loans != "" {
		b.WriteString("\n" + loans + "\n")
	}
	if m.snapshot.Degraded() {
		b.WriteString("\n" + cli.FormatWarning("Some data could not be loaded: "+strings.Join(m.snapshot.Absent, ", ")) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))
	return b.String()
}

func (m Model) renderHeader() string {
	title := cli.TitleStyle.UnsetMarginBottom().Render(cli.KittyIcon + " Kitty")
	status := ""
	switch {
	case m.loading && m.snapshot != nil:
		status = m.spinner.View() + " refreshing"
	case m.snapshot != nil:
		status = cli.SubtleStyle.Render("updated " + m.snapshot.FetchedAt.Format("15:04:05"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", status)
}

func (m Model) renderOverview() string {
	s := m.snapshot
	stats := strings.Join([]string{
		"Welcome back, " + s.DisplayName,
		"Total savings:          " + cli.AmountStyle.Render(cli.FormatAmount(s.TotalSavings)),
		"Upcoming contributions: " + strconv.Itoa(s.UpcomingContributionCount),
		"Pending loan requests:  " + strconv.Itoa(s.PendingLoanCount()),
	}, "\n")
	return cli.BoxStyle.Render(stats)
}

func (m Model) renderLoans() string {
	s := m.snapshot
	if s.PendingLoanCount() == 0 {
		return ""
	}
	lines := []string{cli.FormatInfo("Loan requests awaiting your decision")}
	for _, g := range s.LeaderGroups() {
		for _, loan := range s.PendingLoansByGroup[g.ID] {
			borrower := loan.BorrowerName
			if borrower == "" {
				borrower = loan.BorrowerID.String()
			}
			lines = append(lines, "  "+g.Name+": "+borrower+" requests "+
				cli.AmountStyle.Render(cli.FormatAmount(loan.Amount))+
				cli.SubtleStyle.Render(" ("+loan.ID.String()+")"))
		}
	}
	return strings.Join(lines, "\n")
}
