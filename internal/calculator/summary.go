package calculator

import (
	"sort"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MemberContribution is the minimal member information needed for a summary.
type MemberContribution struct {
	ID               model.ID
	Name             string
	TotalContributed decimal.Decimal
}

// RankedMember is one row of a savings summary.
type RankedMember struct {
	ID               model.ID
	Name             string
	TotalContributed decimal.Decimal
	// PercentOfExpected may exceed 100 when a member over-contributes.
	PercentOfExpected   float64
	PercentShareOfTotal float64
	Rank                int
}

// SavingsSummary is the result of Summarize.
type SavingsSummary struct {
	Ranked            []RankedMember
	TotalGroupSavings decimal.Decimal
}

// Summarize ranks members by what they have contributed and computes each
// member's progress against the expected amount and share of the pool.
//
// Algorithm:
//   - total = sum of all contributions
//   - percentOfExpected = contributed / expected * 100 (0 when expected is 0)
//   - percentShareOfTotal = contributed / total * 100 (0 when total is 0)
//   - rank descending by contribution, ties by ascending member ID
//     (integer IDs by value first, then the rest lexically)
//
// No rounding is applied, so shares still sum to 100.
func Summarize(expected decimal.Decimal, members []MemberContribution) SavingsSummary {
	total := decimal.Zero
	for _, m := range members {
		total = total.Add(m.TotalContributed)
	}

	ranked := make([]RankedMember, len(members))
	for i, m := range members {
		ranked[i] = RankedMember{
			ID:                  m.ID,
			Name:                m.Name,
			TotalContributed:    m.TotalContributed,
			PercentOfExpected:   percentOf(m.TotalContributed, expected),
			PercentShareOfTotal: percentOf(m.TotalContributed, total),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].TotalContributed.Cmp(ranked[j].TotalContributed); c != 0 {
			return c > 0
		}
		return ranked[i].ID.Less(ranked[j].ID)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return SavingsSummary{
		Ranked:            ranked,
		TotalGroupSavings: total,
	}
}

// ContributionsFromMembers adapts group members for Summarize.
func ContributionsFromMembers(members []model.Member) []MemberContribution {
	out := make([]MemberContribution, len(members))
	for i, m := range members {
		out[i] = MemberContribution{
			ID:               m.ID,
			Name:             m.DisplayName,
			TotalContributed: m.TotalContributed,
		}
	}
	return out
}

func percentOf(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
