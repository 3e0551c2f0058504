package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is a member's role inside a group.
type Role string

// Member roles.
const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

// MemberStatus tracks whether a member is still participating.
type MemberStatus string

// Member statuses.
const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// Member is one participant of a group. TotalContributed never decreases over
// the lifetime of the group.
type Member struct {
	JoinedAt         time.Time       `json:"joinedAt"`
	ID               ID              `json:"id"`
	GroupID          ID              `json:"groupId,omitempty"`
	DisplayName      string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	Role             Role            `json:"role"`
	Status           MemberStatus    `json:"status"`
	TotalContributed decimal.Decimal `json:"totalContributed"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
}

// IsLeader reports whether the member leads the group.
func (m Member) IsLeader() bool {
	return m.Role == RoleLeader
}
