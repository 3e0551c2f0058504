// Package account implements the sign-up calls: registration, email
// verification and OTP resend. The backend has moved these routes more than
// once, so every call goes through the endpoint resolver.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/kitty/internal/api"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/source"
)

// ErrInvalidInput is returned before any request is sent.
var ErrInvalidInput = errors.New("invalid account input")

// Endpoints are the POST candidates for each call, tried in order.
type Endpoints struct {
	Register  []string `mapstructure:"register"`
	Verify    []string `mapstructure:"verify"`
	ResendOTP []string `mapstructure:"resend_otp"`
}

// DefaultEndpoints returns the routes used when nothing is configured.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Register:  []string{"/auth/register", "/users/register", "/register", "/auth/signup"},
		Verify:    []string{"/auth/verify-email", "/users/verify-email", "/auth/verify-otp", "/verify-email"},
		ResendOTP: []string{"/auth/resend-otp", "/users/resend-otp", "/auth/resend-verification", "/resend-otp"},
	}
}

// Registration is the sign-up payload.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
}

// Validate checks the fields the backend rejects without explanation.
func (r Registration) Validate() error {
	switch {
	case strings.TrimSpace(r.FirstName) == "":
		return fmt.Errorf("%w: first name is required", ErrInvalidInput)
	case !strings.Contains(r.Email, "@"):
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidInput, r.Email)
	case len(r.Password) < 8:
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}

// Result is a successful call's outcome. Token is set when the server
// issued one.
type Result struct {
	Message string
	Token   string
	Path    string
}

// Service makes the account calls.
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
	if len(endpoints.Register) == 0 {
		endpoints.Register = d.Register
	}
	if len(endpoints.Verify) == 0 {
		endpoints.Verify = d.Verify
	}
	if len(endpoints.ResendOTP) == 0 {
		endpoints.ResendOTP = d.ResendOTP
	}
	return &Service{resolver: r, endpoints: endpoints, logger: logger}
}

// Register creates an account.
func (s *Service) Register(ctx context.Context, reg Registration) (*Result, error) {
	if err := reg.Validate(); err != nil {
		return nil, common.NewUserError("Registration details are incomplete", err)
	}
	return s.post(ctx, "Registration failed", s.endpoints.Register, reg)
}

// VerifyEmail confirms an account with the one-time code sent by email.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, common.NewUserError("Verification code is required", ErrInvalidInput)
	}
	payload := map[string]string{"email": email, "otp": strings.TrimSpace(code)}
	return s.post(ctx, "Email verification failed", s.endpoints.Verify, payload)
}

// ResendOTP asks the server to send a new verification code.
func (s *Service) ResendOTP(ctx context.Context, email string) (*Result, error) {
	if !strings.Contains(email, "@") {
		return nil, common.NewUserError("A valid email is required", ErrInvalidInput)
	}
	return s.post(ctx, "Could not resend verification code", s.endpoints.ResendOTP, map[string]string{"email": email})
}

func (s *Service) post(ctx context.Context, failure string, paths []string, payload any) (*Result, error) {
	winner, resp, err := s.resolver.ResolveCandidate(ctx, resolver.Post(paths...), payload)
	if err != nil {
		return nil, common.NewUserError(failure, err)
	}
	if err := api.CheckResponse(winner.Method, winner.Path, resp); err != nil {
		return nil, common.NewUserError(failure, err)
	}

	result := &Result{Message: api.Message(resp), Path: winner.Path}
	if token, ok := source.Extract(resp.Body, tokenRules(), source.Text()); ok {
		result.Token = token
	}

	s.logger.Info("Account request accepted", "path", winner.Path, "token_issued", result.Token != "")
	return result, nil
}

func tokenRules() []source.Rule {
	return []source.Rule{
		source.Path("data", "token"),
		source.Path("data", "accessToken"),
		source.Path("data", "data", "token"),
		source.Path("token"),
		source.Path("accessToken"),
	}
}
