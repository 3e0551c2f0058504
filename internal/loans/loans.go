// Package loans sends loan-request decisions made by a group leader.
package loans

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Veraticus/kitty/internal/api"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
)

// Endpoints are format strings taking the escaped group ID and loan ID.
type Endpoints struct {
	Approve []string `mapstructure:"approve"`
	Reject  []string `mapstructure:"reject"`
}

// DefaultEndpoints returns the routes used when nothing is configured.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Approve: []string{
			"PUT /groups/%s/loan-requests/%s/approve",
			"POST /groups/%s/loan-requests/%s/approve",
		},
		Reject: []string{
			"PUT /groups/%s/loan-requests/%s/reject",
			"POST /groups/%s/loan-requests/%s/reject",
		},
	}
}

// Decision is what the server said about a decision it accepted.
type Decision struct {
	Message string
	Status  model.LoanStatus
}

// Service records approvals and rejections.
type Service struct {
	resolver  *resolver.Resolver
	logger    *slog.Logger
	endpoints Endpoints
}

// NewService creates a Service. Empty endpoint lists fall back to the defaults.
func NewService(r *resolver.Resolver, endpoints Endpoints, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	d := DefaultEndpoints()
	if len(endpoints.Approve) == 0 {
		endpoints.Approve = d.Approve
	}
	if len(endpoints.Reject) == 0 {
		endpoints.Reject = d.Reject
	}
	return &Service{resolver: r, endpoints: endpoints, logger: logger}
}

type approvePayload struct {
	Status string `json:"status"`
	model.ApprovalParams
}

// Approve accepts a pending loan request with params. A request that is
// already decided is refused before anything is sent; loan is only updated
// once the server accepts the decision.
func (s *Service) Approve(ctx context.Context, groupID model.ID, loan *model.LoanRequest, params model.ApprovalParams) (*Decision, error) {
	next := *loan
	if err := next.Approve(params); err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Loan %s cannot be approved", loan.ID), err)
	}
	candidates, err := expand(s.endpoints.Approve, groupID, loan.ID)
	if err != nil {
		return nil, err
	}
	payload := approvePayload{Status: string(model.LoanApproved), ApprovalParams: params}
	decision, err := s.decide(ctx, candidates, payload, model.LoanApproved, loan.ID)
	if err != nil {
		return nil, err
	}
	*loan = next
	return decision, nil
}

// Reject declines a pending loan request, with the same guarantees as Approve.
func (s *Service) Reject(ctx context.Context, groupID model.ID, loan *model.LoanRequest) (*Decision, error) {
	next := *loan
	if err := next.Reject(); err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Loan %s cannot be rejected", loan.ID), err)
	}
	candidates, err := expand(s.endpoints.Reject, groupID, loan.ID)
	if err != nil {
		return nil, err
	}
	payload := map[string]string{"status": string(model.LoanRejected)}
	decision, err := s.decide(ctx, candidates, payload, model.LoanRejected, loan.ID)
	if err != nil {
		return nil, err
	}
	*loan = next
	return decision, nil
}

// Find returns the request with id from loans.
func Find(loans []model.LoanRequest, id model.ID) (*model.LoanRequest, bool) {
	for i := range loans {
		if loans[i].ID == id {
			return &loans[i], true
		}
	}
	return nil, false
}

func (s *Service) decide(ctx context.Context, candidates []resolver.Candidate, payload any, status model.LoanStatus, loanID model.ID) (*Decision, error) {
	winner, resp, err := s.resolver.ResolveCandidate(ctx, candidates, payload)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Could not record %s decision for loan %s", status, loanID), err)
	}
	if err := api.CheckResponse(winner.Method, winner.Path, resp); err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Server refused %s decision for loan %s", status, loanID), err)
	}

	s.logger.Info("Loan decision recorded", "loan", loanID, "status", status, "path", winner.Path)
	return &Decision{Status: status, Message: api.Message(resp)}, nil
}

// expand turns "METHOD /path/%s/%s" templates into candidates.
func expand(templates []string, groupID, loanID model.ID) ([]resolver.Candidate, error) {
	g := url.PathEscape(groupID.String())
	l := url.PathEscape(loanID.String())

	out := make([]resolver.Candidate, 0, len(templates))
	for _, t := range templates {
		method, path, ok := strings.Cut(strings.TrimSpace(t), " ")
		if !ok {
			return nil, fmt.Errorf("%w: loan endpoint %q needs a method and a path", common.ErrInvalidConfig, t)
		}
		out = append(out, resolver.Candidate{
			Method: strings.ToUpper(method),
			Path:   fmt.Sprintf(strings.TrimSpace(path), g, l),
		})
	}
	return out, nil
}
