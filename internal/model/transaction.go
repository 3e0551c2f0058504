package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a movement of money within a group.
type TransactionType string

// Transaction types.
const (
	TransactionContribution TransactionType = "contribution"
	TransactionWithdrawal   TransactionType = "withdrawal"
	TransactionLoan         TransactionType = "loan"
	TransactionRepayment    TransactionType = "repayment"
)

// TransactionStatus is the settlement state reported by the server.
type TransactionStatus string

// Transaction statuses.
const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
)

// Transaction is an immutable entry in a group's history.
type Transaction struct {
	OccurredAt  time.Time         `json:"date"`
	ID          ID                `json:"id"`
	Type        TransactionType   `json:"type"`
	ActorName   string            `json:"actorName"`
	Description string            `json:"description,omitempty"`
	Status      TransactionStatus `json:"status,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
}

// IsInflow reports whether the transaction adds money to the group pool.
func (t Transaction) IsInflow() bool {
	return t.Type == TransactionContribution || t.Type == TransactionRepayment
}
