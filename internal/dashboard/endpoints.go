package dashboard

import (
	"fmt"
	"net/url"

	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
)

// Endpoints lists the read candidates for each dashboard source, in the
// order they are tried.
type Endpoints struct {
	Profile      []string `mapstructure:"profile"`
	Groups       []string `mapstructure:"groups"`
	TotalSavings []string `mapstructure:"total_savings"`
	Upcoming     []string `mapstructure:"upcoming"`
	GroupTotals  []string `mapstructure:"group_totals"`
	// PendingLoans entries are format strings taking the escaped group ID.
	PendingLoans []string `mapstructure:"pending_loans"`
}

// DefaultEndpoints returns the routes used when nothing is configured.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Profile:      []string{"/users/profile", "/users/me", "/auth/me"},
		Groups:       []string{"/groups/my-groups", "/groups"},
		TotalSavings: []string{"/users/total-savings", "/contributions/total"},
		Upcoming:     []string{"/contributions/upcoming"},
		GroupTotals:  []string{"/contributions/by-group", "/contributions/totals"},
		PendingLoans: []string{
			"/groups/%s/loan-requests?status=pending",
			"/loans/group/%s?status=pending",
		},
	}
}

// WithDefaults fills every empty source from DefaultEndpoints.
func (e Endpoints) WithDefaults() Endpoints {
	d := DefaultEndpoints()
	fill := func(dst *[]string, def []string) {
		if len(*dst) == 0 {
			*dst = def
		}
	}
	fill(&e.Profile, d.Profile)
	fill(&e.Groups, d.Groups)
	fill(&e.TotalSavings, d.TotalSavings)
	fill(&e.Upcoming, d.Upcoming)
	fill(&e.GroupTotals, d.GroupTotals)
	fill(&e.PendingLoans, d.PendingLoans)
	return e
}

func (e Endpoints) pendingLoans(groupID model.ID) []resolver.Candidate {
	paths := make([]string, len(e.PendingLoans))
	for i, p := range e.PendingLoans {
		paths[i] = fmt.Sprintf(p, url.PathEscape(groupID.String()))
	}
	return resolver.Get(paths...)
}
