package calculator

import (
	"testing"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contribution(id, name string, amount int64) MemberContribution {
	return MemberContribution{ID: model.ID(id), Name: name, TotalContributed: decimal.NewFromInt(amount)}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(decimal.NewFromInt(1000), []MemberContribution{
		contribution("1", "Amina", 500),
		contribution("2", "Baraka", 1500),
		contribution("3", "Chausiku", 0),
	})

	assert.True(t, decimal.NewFromInt(2000).Equal(summary.TotalGroupSavings))
	require.Len(t, summary.Ranked, 3)

	first := summary.Ranked[0]
	assert.Equal(t, model.ID("2"), first.ID)
	assert.Equal(t, 1, first.Rank)
	assert.InDelta(t, 150.0, first.PercentOfExpected, 1e-9)
	assert.InDelta(t, 75.0, first.PercentShareOfTotal, 1e-9)

	second := summary.Ranked[1]
	assert.Equal(t, model.ID("1"), second.ID)
	assert.Equal(t, 2, second.Rank)
	assert.InDelta(t, 50.0, second.PercentOfExpected, 1e-9)
	assert.InDelta(t, 25.0, second.PercentShareOfTotal, 1e-9)

	third := summary.Ranked[2]
	assert.Equal(t, "Chausiku", third.Name)
	assert.Equal(t, 3, third.Rank)
	assert.Zero(t, third.PercentOfExpected)
	assert.Zero(t, third.PercentShareOfTotal)
}

func TestSummarize_TiesBreakByID(t *testing.T) {
	summary := Summarize(decimal.NewFromInt(100), []MemberContribution{
		contribution("10", "Ten", 50),
		contribution("9", "Nine", 50),
		contribution("b", "Bee", 50),
		contribution("a", "Ay", 50),
		contribution("2", "Two", 80),
	})

	ids := make([]model.ID, 0, len(summary.Ranked))
	for _, r := range summary.Ranked {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []model.ID{"2", "9", "10", "a", "b"}, ids)
}

func permutations(in []MemberContribution) [][]MemberContribution {
	if len(in) <= 1 {
		return [][]MemberContribution{append([]MemberContribution(nil), in...)}
	}
	var out [][]MemberContribution
	for i := range in {
		rest := make([]MemberContribution, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]MemberContribution{in[i]}, p...))
		}
	}
	return out
}

func TestSummarize_MixedIDTiesIgnoreInputOrder(t *testing.T) {
	members := []MemberContribution{
		contribution("2", "Two", 500),
		contribution("10", "Ten", 500),
		contribution("1a", "One-a", 500),
		contribution("b", "Bee", 500),
	}
	want := []model.ID{"2", "10", "1a", "b"}

	for _, perm := range permutations(members) {
		summary := Summarize(decimal.NewFromInt(500), perm)
		ids := make([]model.ID, 0, len(summary.Ranked))
		for _, r := range summary.Ranked {
			ids = append(ids, r.ID)
		}
		assert.Equal(t, want, ids, "input order %v", perm)
	}
}

func TestSummarize_ZeroExpected(t *testing.T) {
	summary := Summarize(decimal.Zero, []MemberContribution{contribution("1", "Amina", 300)})

	require.Len(t, summary.Ranked, 1)
	assert.Zero(t, summary.Ranked[0].PercentOfExpected)
	assert.InDelta(t, 100.0, summary.Ranked[0].PercentShareOfTotal, 1e-9)
}

func TestSummarize_ZeroTotal(t *testing.T) {
	summary := Summarize(decimal.NewFromInt(100), []MemberContribution{
		contribution("1", "Amina", 0),
		contribution("2", "Baraka", 0),
	})

	assert.True(t, summary.TotalGroupSavings.IsZero())
	for _, r := range summary.Ranked {
		assert.Zero(t, r.PercentShareOfTotal)
	}
	assert.Equal(t, model.ID("1"), summary.Ranked[0].ID)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(decimal.NewFromInt(100), nil)

	assert.Empty(t, summary.Ranked)
	assert.True(t, summary.TotalGroupSavings.IsZero())
}

func TestSummarize_SharesSumToHundred(t *testing.T) {
	amounts := []string{"33.33", "33.33", "33.34", "0.01", "1999.99", "7"}
	members := make([]MemberContribution, len(amounts))
	for i, a := range amounts {
		members[i] = MemberContribution{
			ID:               model.ID(decimal.NewFromInt(int64(i)).String()),
			TotalContributed: decimal.RequireFromString(a),
		}
	}

	summary := Summarize(decimal.NewFromInt(50), members)

	sum := 0.0
	for i, r := range summary.Ranked {
		sum += r.PercentShareOfTotal
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.False(t, r.TotalContributed.GreaterThan(summary.Ranked[i-1].TotalContributed))
		}
	}
	assert.InDelta(t, 100.0, sum, 1e-6)
}

func TestSummarize_OverContributionNotClamped(t *testing.T) {
	summary := Summarize(decimal.NewFromInt(100), []MemberContribution{contribution("1", "Amina", 250)})

	assert.InDelta(t, 250.0, summary.Ranked[0].PercentOfExpected, 1e-9)
}

func TestContributionsFromMembers(t *testing.T) {
	members := []model.Member{
		{ID: "7", DisplayName: "Amina", TotalContributed: decimal.NewFromInt(40)},
	}

	got := ContributionsFromMembers(members)

	require.Len(t, got, 1)
	assert.Equal(t, model.ID("7"), got[0].ID)
	assert.Equal(t, "Amina", got[0].Name)
	assert.True(t, decimal.NewFromInt(40).Equal(got[0].TotalContributed))
}
