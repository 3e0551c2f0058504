package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDisplayName is shown when the profile cannot be loaded.
const DefaultDisplayName = "Member"

// DashboardSnapshot is the result of one full aggregation cycle. It is built
// once and never mutated afterwards.
type DashboardSnapshot struct {
	FetchedAt                  time.Time
	PerGroupContributionTotals map[ID]decimal.Decimal
	PendingLoansByGroup        map[ID][]LoanRequest
	DisplayName                string
	Groups                     []Group
	// Absent lists the sources that fell back to their default value.
	Absent                    []string
	TotalSavings              decimal.Decimal
	UpcomingContributionCount int
}

// LeaderGroups returns the groups the viewer leads, in snapshot order.
func (s *DashboardSnapshot) LeaderGroups() []Group {
	var out []Group
	for _, g := range s.Groups {
		if g.IsLeader {
			out = append(out, g)
		}
	}
	return out
}

// PendingLoanCount is the number of loan requests awaiting the viewer.
func (s *DashboardSnapshot) PendingLoanCount() int {
	n := 0
	for _, loans := range s.PendingLoansByGroup {
		n += len(loans)
	}
	return n
}

// Degraded reports whether any source was absent in this cycle.
func (s *DashboardSnapshot) Degraded() bool {
	return len(s.Absent) > 0
}
