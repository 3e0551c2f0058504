package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const dateLayout = "Jan 2, 2006"

// FormatAmount renders money with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		}).
		Headers(headers...)
}

// RenderDashboard renders a snapshot. now drives the next-due column.
func RenderDashboard(s *model.DashboardSnapshot, now time.Time) string {
	var sections []string

	sections = append(sections, FormatTitle("Welcome back, "+s.DisplayName))

	stats := strings.Join([]string{
		"Total savings:          " + AmountStyle.Render(FormatAmount(s.TotalSavings)),
		"Groups:                 " + strconv.Itoa(len(s.Groups)),
		"Upcoming contributions: " + strconv.Itoa(s.UpcomingContributionCount),
		"Pending loan requests:  " + strconv.Itoa(s.PendingLoanCount()),
	}, "\n")
	sections = append(sections, RenderBox("Overview", stats))

	if len(s.Groups) == 0 {
		sections = append(sections, SubtleStyle.Render("You are not a member of any group yet."))
	} else {
		t := newTable("Group", "Contribution", "Frequency", "You saved", "Next due", "Role")
		for _, g := range s.Groups {
			role := "member"
			if g.IsLeader {
				role = LeaderIcon + " leader"
			}
			saved := "-"
			if total, ok := s.PerGroupContributionTotals[g.ID]; ok {
				saved = FormatAmount(total)
			}
			t.Row(
				g.Name,
				FormatAmount(g.SavingsAmount),
				string(g.SavingsFrequency),
				saved,
				calculator.NextDueDate(g.SavingsFrequency, now).Format(dateLayout),
				role,
			)
		}
		sections = append(sections, t.Render())
	}

	if loans := renderPendingLoans(s); loans != "" {
		sections = append(sections, loans)
	}

	if s.Degraded() {
		sections = append(sections, FormatWarning("Some data could not be loaded: "+strings.Join(s.Absent, ", ")))
	}

	sections = append(sections, SubtleStyle.Render("Updated "+s.FetchedAt.Format("15:04:05")))
	return strings.Join(sections, "\n") + "\n"
}

func renderPendingLoans(s *model.DashboardSnapshot) string {
	if s.PendingLoanCount() == 0 {
		return ""
	}

	names := make(map[model.ID]string, len(s.Groups))
	for _, g := range s.Groups {
		names[g.ID] = g.Name
	}
	ids := make([]model.ID, 0, len(s.PendingLoansByGroup))
	for id := range s.PendingLoansByGroup {
		ids = append(ids, id)
	}
	// Groups in the order the server listed them.
	order := make(map[model.ID]int, len(s.Groups))
	for i, g := range s.Groups {
		order[g.ID] = i
	}
	sort.Slice(ids, func(i, j int) bool { return order[ids[i]] < order[ids[j]] })

	t := newTable("Group", "Loan", "Borrower", "Amount", "Purpose", "Requested")
	for _, id := range ids {
		for _, l := range s.PendingLoansByGroup[id] {
			borrower := l.BorrowerName
			if borrower == "" {
				borrower = l.BorrowerID.String()
			}
			requested := "-"
			if !l.RequestedAt.IsZero() {
				requested = l.RequestedAt.Format(dateLayout)
			}
			t.Row(names[id], l.ID.String(), borrower, FormatAmount(l.Amount), l.Purpose, requested)
		}
	}
	return TitleStyle.Render("Loan requests awaiting your decision") + "\n" + t.Render()
}

// RenderSummary renders a group's ranked savings summary.
func RenderSummary(group model.Group, summary calculator.SavingsSummary) string {
	var b strings.Builder
	b.WriteString(FormatTitle(group.Name + " savings"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Expected per member: %s (%s)\n", AmountStyle.Render(FormatAmount(group.SavingsAmount)), group.SavingsFrequency)
	fmt.Fprintf(&b, "Total group savings: %s\n", AmountStyle.Render(FormatAmount(summary.TotalGroupSavings)))

	if len(summary.Ranked) == 0 {
		b.WriteString(SubtleStyle.Render("No member contributions yet."))
		b.WriteString("\n")
		return b.String()
	}

	t := newTable("#", "Member", "Contributed", "Of expected", "Share")
	for _, m := range summary.Ranked {
		name := m.Name
		if name == "" {
			name = m.ID.String()
		}
		t.Row(strconv.Itoa(m.Rank), name, FormatAmount(m.TotalContributed),
			FormatPercent(m.PercentOfExpected), FormatPercent(m.PercentShareOfTotal))
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// RenderTransactions renders a transaction history.
func RenderTransactions(group string, txns []model.Transaction) string {
	if len(txns) == 0 {
		return FormatInfo("No transactions recorded for "+group) + "\n"
	}

	t := newTable("Date", "Type", "Member", "Amount", "Status", "Description")
	for _, txn := range txns {
		amount := FormatAmount(txn.Amount)
		if txn.IsInflow() {
			amount = SuccessStyle.Render("+" + amount)
		} else {
			amount = WarningStyle.Render("-" + amount)
		}
		status := string(txn.Status)
		if status == "" {
			status = "-"
		}
		t.Row(txn.OccurredAt.Format(dateLayout), string(txn.Type), txn.ActorName, amount, status, txn.Description)
	}
	return FormatTitle("Transactions for "+group) + "\n" + t.Render() + "\n"
}

// RenderApproval describes the terms a loan is approved with.
func RenderApproval(loanID model.ID, params model.ApprovalParams) string {
	content := strings.Join([]string{
		"Due date:       " + params.DueDate.Format(dateLayout),
		"Interest rate:  " + FormatPercent(params.InterestRate),
		"Payment method: " + params.PaymentMethod,
	}, "\n")
	return RenderBox("Approval terms for loan "+loanID.String(), content) + "\n"
}

// RenderSchedule renders the next contribution date.
func RenderSchedule(freq model.Frequency, from, next time.Time) string {
	label := string(freq)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s contribution after %s is due %s\n",
		label,
		from.Format(dateLayout),
		AmountStyle.Render(next.Format("Monday, "+dateLayout)))
}
