package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency is how often members of a group contribute.
type Frequency string

const (
	// FrequencyWeekly means one contribution every seven days.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly means one contribution per calendar month.
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyMonthly
}

// Limits on group configuration enforced by the backend.
const (
	MaxInterestRatePercent = 50
	MinLoanDurationMonths  = 1
	MaxLoanDurationMonths  = 60
)

// ErrInvalidGroup is returned by Group.Validate.
var ErrInvalidGroup = errors.New("invalid group")

// Group is a savings group as seen by the current user.
type Group struct {
	ID                        ID              `json:"id"`
	Name                      string          `json:"name"`
	Description               string          `json:"description,omitempty"`
	SavingsFrequency          Frequency       `json:"savingsFrequency"`
	GroupCode                 string          `json:"groupCode,omitempty"`
	SavingsAmount             decimal.Decimal `json:"savingsAmount"`
	TotalSavings              decimal.Decimal `json:"totalSavings"`
	InterestRatePercent       float64         `json:"interestRate"`
	DefaultLoanDurationMonths int             `json:"defaultLoanDuration"`
	// IsLeader is relative to the viewer: true when the current user leads the group.
	IsLeader bool `json:"isLeader"`
}

// Validate checks the configuration invariants of a group.
func (g Group) Validate() error {
	if !g.SavingsAmount.IsPositive() {
		return fmt.Errorf("%w: savings amount must be positive, got %s", ErrInvalidGroup, g.SavingsAmount)
	}
	if !g.SavingsFrequency.Valid() {
		return fmt.Errorf("%w: unknown savings frequency %q", ErrInvalidGroup, g.SavingsFrequency)
	}
	if g.InterestRatePercent < 0 || g.InterestRatePercent > MaxInterestRatePercent {
		return fmt.Errorf("%w: interest rate %.2f outside [0, %d]", ErrInvalidGroup, g.InterestRatePercent, MaxInterestRatePercent)
	}
	if g.DefaultLoanDurationMonths < MinLoanDurationMonths || g.DefaultLoanDurationMonths > MaxLoanDurationMonths {
		return fmt.Errorf("%w: loan duration %d outside [%d, %d]", ErrInvalidGroup,
			g.DefaultLoanDurationMonths, MinLoanDurationMonths, MaxLoanDurationMonths)
	}
	if g.TotalSavings.IsNegative() {
		return fmt.Errorf("%w: total savings cannot be negative", ErrInvalidGroup)
	}
	return nil
}
