// Package groups reads the per-group views: group detail, member roster and
// transaction history.
package groups

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/source"
)

// Endpoints are format strings taking the escaped group ID, tried in order.
type Endpoints struct {
	Detail       []string `mapstructure:"detail"`
	Members      []string `mapstructure:"members"`
	Transactions []string `mapstructure:"transactions"`
}

// DefaultEndpoints returns the routes used when nothing is configured.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Detail:       []string{"/groups/%s"},
		Members:      []string{"/groups/%s/members", "/members/group/%s"},
		Transactions: []string{"/groups/%s/transactions", "/transactions/group/%s"},
	}
}

// Reader fetches group views. Like every read in kitty, a failure yields an
// absent result, never an error.
type Reader struct {
	deps      source.Deps
	endpoints Endpoints
}

// NewReader creates a Reader. Empty endpoint lists fall back to the defaults.
func NewReader(deps source.Deps, endpoints Endpoints) *Reader {
	d := DefaultEndpoints()
	if len(endpoints.Detail) == 0 {
		endpoints.Detail = d.Detail
	}
	if len(endpoints.Members) == 0 {
		endpoints.Members = d.Members
	}
	if len(endpoints.Transactions) == 0 {
		endpoints.Transactions = d.Transactions
	}
	return &Reader{deps: deps, endpoints: endpoints}
}

// Group reads a single group's settings.
func (r *Reader) Group(ctx context.Context, groupID model.ID) source.Result[model.Group] {
	return source.New(r.deps, source.Spec[model.Group]{
		Name:       "group:" + groupID.String(),
		Candidates: candidates(r.endpoints.Detail, groupID),
		Rules:      source.Nested("group"),
		Decode:     source.Object[model.Group](),
	}).Fetch(ctx)
}

// Members reads the member roster of a group in server order. Every member
// returned carries groupID.
func (r *Reader) Members(ctx context.Context, groupID model.ID) source.Result[[]model.Member] {
	res := source.New(r.deps, source.Spec[[]model.Member]{
		Name:       "members:" + groupID.String(),
		Candidates: candidates(r.endpoints.Members, groupID),
		Rules:      source.Nested("members"),
		Decode:     source.List[model.Member](),
		Default:    []model.Member{},
	}).Fetch(ctx)

	members, ok := res.Get()
	if !ok {
		return res
	}
	for i := range members {
		if members[i].GroupID == "" {
			members[i].GroupID = groupID
		}
	}
	return source.Present(members)
}

// Transactions reads a group's transaction history in server order.
func (r *Reader) Transactions(ctx context.Context, groupID model.ID) source.Result[[]model.Transaction] {
	return source.New(r.deps, source.Spec[[]model.Transaction]{
		Name:       "transactions:" + groupID.String(),
		Candidates: candidates(r.endpoints.Transactions, groupID),
		Rules:      source.Nested("transactions"),
		Decode:     source.List[model.Transaction](),
		Default:    []model.Transaction{},
	}).Fetch(ctx)
}

func candidates(formats []string, groupID model.ID) []resolver.Candidate {
	escaped := url.PathEscape(groupID.String())
	paths := make([]string, len(formats))
	for i, f := range formats {
		paths[i] = fmt.Sprintf(f, escaped)
	}
	return resolver.Get(paths...)
}
