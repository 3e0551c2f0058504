package calculator

import (
	"testing"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDeriveApprovalDefaults(t *testing.T) {
	group := model.Group{
		ID:                        "g1",
		InterestRatePercent:       10,
		DefaultLoanDurationMonths: 6,
	}

	params := DeriveApprovalDefaults(group, date(2024, 3, 15), ApprovalOverrides{})

	assert.Equal(t, date(2024, 9, 15), params.DueDate)
	assert.InDelta(t, 10.0, params.InterestRate, 1e-9)
	assert.Equal(t, model.PaymentMethodGroupPool, params.PaymentMethod)
}

func TestDeriveApprovalDefaults_ClampsDueDate(t *testing.T) {
	group := model.Group{DefaultLoanDurationMonths: 1}

	params := DeriveApprovalDefaults(group, date(2024, 1, 31), ApprovalOverrides{})

	assert.Equal(t, date(2024, 2, 29), params.DueDate)
}

func TestDeriveApprovalDefaults_Overrides(t *testing.T) {
	group := model.Group{InterestRatePercent: 10, DefaultLoanDurationMonths: 6}
	months := 3
	rate := 0.0

	params := DeriveApprovalDefaults(group, date(2024, 3, 15), ApprovalOverrides{
		DueInMonths:   &months,
		InterestRate:  &rate,
		PaymentMethod: "mobile_money",
	})

	assert.Equal(t, date(2024, 6, 15), params.DueDate)
	assert.Zero(t, params.InterestRate)
	assert.Equal(t, "mobile_money", params.PaymentMethod)
}

func TestDeriveApprovalDefaults_DoesNotMutateGroup(t *testing.T) {
	group := model.Group{InterestRatePercent: 12, DefaultLoanDurationMonths: 12}
	before := group

	_ = DeriveApprovalDefaults(group, date(2024, 1, 1), ApprovalOverrides{})

	assert.Equal(t, before, group)
}
