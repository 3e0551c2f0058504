package sheets

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/model"
)

// Report is one exported savings summary.
type Report struct {
	GeneratedAt time.Time
	Group       model.Group
	Summary     calculator.SavingsSummary
}

// headerRows is the number of rows above the member table, including its
// column header.
const headerRows = 6

// summaryRows lays the report out as sheet rows. Amounts are written as
// numbers so the sheet can format and sum them.
func summaryRows(r Report) [][]any {
	rows := make([][]any, 0, headerRows+len(r.Summary.Ranked))

	rows = append(rows,
		[]any{fmt.Sprintf("%s savings summary", r.Group.Name)},
		[]any{"Generated", r.GeneratedAt.Format("2006-01-02 15:04")},
		[]any{"Expected per member", r.Group.SavingsAmount.InexactFloat64(), string(r.Group.SavingsFrequency)},
		[]any{"Total group savings", r.Summary.TotalGroupSavings.InexactFloat64()},
		[]any{},
		[]any{"Rank", "Member", "Contributed", "% of expected", "% of total"},
	)

	for _, m := range r.Summary.Ranked {
		name := m.Name
		if name == "" {
			name = m.ID.String()
		}
		rows = append(rows, []any{
			m.Rank,
			name,
			m.TotalContributed.InexactFloat64(),
			round2(m.PercentOfExpected),
			round2(m.PercentShareOfTotal),
		})
	}

	return rows
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
