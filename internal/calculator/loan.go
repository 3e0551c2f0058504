package calculator

import (
	"time"

	"github.com/Veraticus/kitty/internal/model"
)

// ApprovalOverrides are the values an approver may set instead of the
// group's defaults. Nil or empty fields keep the default.
type ApprovalOverrides struct {
	DueInMonths   *int
	InterestRate  *float64
	PaymentMethod string
}

// DeriveApprovalDefaults computes the terms proposed when approving a loan in
// group on the date now. It only derives parameters; it does not change the
// loan request.
func DeriveApprovalDefaults(group model.Group, now time.Time, overrides ApprovalOverrides) model.ApprovalParams {
	months := group.DefaultLoanDurationMonths
	if overrides.DueInMonths != nil {
		months = *overrides.DueInMonths
	}

	rate := group.InterestRatePercent
	if overrides.InterestRate != nil {
		rate = *overrides.InterestRate
	}

	method := model.PaymentMethodGroupPool
	if overrides.PaymentMethod != "" {
		method = overrides.PaymentMethod
	}

	return model.ApprovalParams{
		DueDate:       AddMonths(now, months),
		InterestRate:  rate,
		PaymentMethod: method,
	}
}
