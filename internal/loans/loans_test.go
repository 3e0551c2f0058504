package loans

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingLoan(id model.ID) *model.LoanRequest {
	return &model.LoanRequest{ID: id, GroupID: "g1", Status: model.LoanPending}
}

func TestApprove(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodPut, "/groups/g1/loan-requests/11/approve",
			testutil.Raw(http.StatusOK, `{"success":true,"message":"Loan approved"}`))
	svc := NewService(resolver.New(fake), Endpoints{}, nil)
	params := model.ApprovalParams{
		DueDate:       time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC),
		InterestRate:  10,
		PaymentMethod: model.PaymentMethodGroupPool,
	}

	loan := pendingLoan("11")
	decision, err := svc.Approve(context.Background(), "g1", loan, params)

	require.NoError(t, err)
	assert.Equal(t, model.LoanApproved, decision.Status)
	assert.Equal(t, "Loan approved", decision.Message)
	assert.Equal(t, model.LoanApproved, loan.Status)
	require.NotNil(t, loan.DueDate)
	assert.Equal(t, params.DueDate, *loan.DueDate)

	body, ok := fake.LastBody().(approvePayload)
	require.True(t, ok)
	assert.Equal(t, "approved", body.Status)
	assert.Equal(t, params, body.ApprovalParams)
}

func TestReject_FallsBackToPost(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodPost, "/groups/g1/loan-requests/12/reject", testutil.Raw(http.StatusOK, `{"success":true}`))
	svc := NewService(resolver.New(fake), Endpoints{}, nil)

	loan := pendingLoan("12")
	decision, err := svc.Reject(context.Background(), "g1", loan)

	require.NoError(t, err)
	assert.Equal(t, model.LoanRejected, decision.Status)
	assert.Equal(t, model.LoanRejected, loan.Status)
	assert.Equal(t, []string{
		"PUT /groups/g1/loan-requests/12/reject",
		"POST /groups/g1/loan-requests/12/reject",
	}, fake.Calls())
}

func TestDecision_ExhaustedIsUserError(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodPut, "/groups/g1/loan-requests/11/approve",
			testutil.Raw(http.StatusForbidden, `{"success":false,"message":"Only leaders can approve"}`))
	svc := NewService(resolver.New(fake), Endpoints{}, nil)

	loan := pendingLoan("11")
	_, err := svc.Approve(context.Background(), "g1", loan, model.ApprovalParams{})

	require.Error(t, err)
	assert.Equal(t, model.LoanPending, loan.Status, "a refused write leaves the request pending")
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.ErrorIs(t, err, common.ErrExhaustedCandidates)

	var exhausted *common.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Len(t, exhausted.Attempted, 2)
	assert.Equal(t, http.StatusNotFound, exhausted.LastStatus())
}

func TestDecision_SuccessFalseFails(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodPut, "/groups/g1/loan-requests/11/reject",
			testutil.Raw(http.StatusOK, `{"success":false,"message":"Loan already decided"}`))
	svc := NewService(resolver.New(fake), Endpoints{}, nil)

	_, err := svc.Reject(context.Background(), "g1", pendingLoan("11"))

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrHTTPFailure)
	assert.Contains(t, err.Error(), "Loan already decided")
}

func TestDecision_DecidedLoanIsRefusedWithoutWrite(t *testing.T) {
	fake := testutil.NewFakeTransport().
		Handle(http.MethodPut, "/groups/g1/loan-requests/11/approve", testutil.Raw(http.StatusOK, `{"success":true}`)).
		Handle(http.MethodPut, "/groups/g1/loan-requests/11/reject", testutil.Raw(http.StatusOK, `{"success":true}`))
	svc := NewService(resolver.New(fake), Endpoints{}, nil)

	approved := &model.LoanRequest{ID: "11", Status: model.LoanApproved}
	_, err := svc.Approve(context.Background(), "g1", approved, model.ApprovalParams{})
	assert.ErrorIs(t, err, model.ErrLoanDecided)
	var userErr *common.UserError
	assert.ErrorAs(t, err, &userErr)

	rejected := &model.LoanRequest{ID: "11", Status: model.LoanRejected}
	_, err = svc.Reject(context.Background(), "g1", rejected)
	assert.ErrorIs(t, err, model.ErrLoanDecided)

	assert.Empty(t, fake.Calls(), "no decision may be sent for a decided request")
	assert.Equal(t, model.LoanApproved, approved.Status)
}

func TestFind(t *testing.T) {
	loans := []model.LoanRequest{{ID: "1"}, {ID: "2", Purpose: "seeds"}}

	got, ok := Find(loans, "2")
	require.True(t, ok)
	assert.Equal(t, "seeds", got.Purpose)

	_, ok = Find(loans, "3")
	assert.False(t, ok)
}

func TestExpand(t *testing.T) {
	got, err := expand([]string{"post /loans/%s/%s/approve"}, "g 1", "7")
	require.NoError(t, err)
	assert.Equal(t, []resolver.Candidate{{Method: "POST", Path: "/loans/g%201/7/approve"}}, got)

	_, err = expand([]string{"/loans/%s/%s"}, "g1", "7")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}
