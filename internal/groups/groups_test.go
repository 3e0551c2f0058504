package groups

import (
	"context"
	"net/http"
	"testing"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/source"
	"github.com/Veraticus/kitty/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(fake *testutil.FakeTransport) *Reader {
	return NewReader(source.Deps{Resolver: resolver.New(fake)}, Endpoints{})
}

func TestMembers(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodGet, "/groups/g1/members", testutil.Raw(http.StatusOK, `{"success":true,"data":{"members":[
			{"id":1,"name":"Amina","role":"leader","status":"active","totalContributed":"1500"},
			{"id":2,"groupId":"other","name":"Baraka","role":"member","totalContributed":500}
		]}}`))

	members, ok := newReader(fake).Members(context.Background(), "g1").Get()

	require.True(t, ok)
	require.Len(t, members, 2)
	assert.Equal(t, "Amina", members[0].DisplayName)
	assert.True(t, members[0].IsLeader())
	assert.Equal(t, model.ID("g1"), members[0].GroupID)
	assert.Equal(t, model.ID("other"), members[1].GroupID)
	assert.True(t, decimal.NewFromInt(500).Equal(members[1].TotalContributed))
}

func TestMembers_FallsBackToSecondRoute(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodGet, "/members/group/g%2F1", testutil.Raw(http.StatusOK, `[{"id":"m1","name":"Amina"}]`))

	members, ok := newReader(fake).Members(context.Background(), "g/1").Get()

	require.True(t, ok)
	require.Len(t, members, 1)
	assert.Equal(t, []string{"GET /groups/g%2F1/members", "GET /members/group/g%2F1"}, fake.Calls())
}

func TestMembers_AbsentHasNoPlaceholders(t *testing.T) {
	fake := testutil.NewFakeTransport()

	res := newReader(fake).Members(context.Background(), "g1")

	assert.False(t, res.IsPresent())
	assert.ErrorIs(t, res.Reason(), common.ErrExhaustedCandidates)
	assert.Empty(t, res.OrElse(nil))
}

func TestTransactions(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodGet, "/groups/g1/transactions", testutil.Raw(http.StatusOK, `{"data":[
			{"id":"t1","type":"contribution","amount":200,"actorName":"Amina","date":"2024-03-01T10:00:00Z","status":"completed"},
			{"id":"t2","type":"loan","amount":"350.75","actorName":"Baraka","date":"2024-03-02T10:00:00Z"}
		]}`))

	txns, ok := newReader(fake).Transactions(context.Background(), "g1").Get()

	require.True(t, ok)
	require.Len(t, txns, 2)
	assert.Equal(t, model.ID("t1"), txns[0].ID)
	assert.True(t, txns[0].IsInflow())
	assert.False(t, txns[1].IsInflow())
	assert.True(t, decimal.RequireFromString("350.75").Equal(txns[1].Amount))
	assert.Equal(t, 2, txns[1].OccurredAt.Day())
}

func TestGroup(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodGet, "/groups/g1", testutil.Raw(http.StatusOK, `{"success":true,"data":{"group":
			{"id":"g1","name":"Harambee","savingsFrequency":"weekly","savingsAmount":250,"interestRate":5,"defaultLoanDuration":3}}}`))

	group, ok := newReader(fake).Group(context.Background(), "g1").Get()

	require.True(t, ok)
	assert.Equal(t, "Harambee", group.Name)
	assert.Equal(t, model.FrequencyWeekly, group.SavingsFrequency)
	assert.InDelta(t, 5.0, group.InterestRatePercent, 1e-9)
	assert.Equal(t, 3, group.DefaultLoanDurationMonths)
	require.NoError(t, group.Validate())
}
