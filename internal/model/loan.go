package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan request.
type LoanStatus string

// Loan statuses. Approved and rejected are terminal.
const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
)

// PaymentMethodGroupPool marks a loan funded from the group's pooled savings.
const PaymentMethodGroupPool = "group_pool"

// ErrLoanDecided is returned when approving or rejecting a request that is no
// longer pending.
var ErrLoanDecided = errors.New("loan request already decided")

// ApprovalParams are attached to a loan request when it is approved.
type ApprovalParams struct {
	DueDate       time.Time `json:"dueDate"`
	PaymentMethod string    `json:"paymentMethod"`
	InterestRate  float64   `json:"interestRate"`
}

// LoanRequest is a member's request to borrow from the group pool.
type LoanRequest struct {
	RequestedAt   time.Time       `json:"createdAt"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	InterestRate  *float64        `json:"interestRate,omitempty"`
	ID            ID              `json:"id"`
	GroupID       ID              `json:"groupId"`
	BorrowerID    ID              `json:"borrowerId"`
	BorrowerName  string          `json:"borrowerName,omitempty"`
	Purpose       string          `json:"purpose"`
	Status        LoanStatus      `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

// IsPending reports whether the request still awaits a decision.
func (l LoanRequest) IsPending() bool {
	return l.Status == LoanPending || l.Status == ""
}

// Approve moves a pending request to approved and records the terms.
func (l *LoanRequest) Approve(params ApprovalParams) error {
	if !l.IsPending() {
		return fmt.Errorf("%w: %s is %s", ErrLoanDecided, l.ID, l.Status)
	}
	due := params.DueDate
	rate := params.InterestRate
	l.Status = LoanApproved
	l.DueDate = &due
	l.InterestRate = &rate
	l.PaymentMethod = params.PaymentMethod
	return nil
}

// Reject moves a pending request to rejected.
func (l *LoanRequest) Reject() error {
	if !l.IsPending() {
		return fmt.Errorf("%w: %s is %s", ErrLoanDecided, l.ID, l.Status)
	}
	l.Status = LoanRejected
	return nil
}
