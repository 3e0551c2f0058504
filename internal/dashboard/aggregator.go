// Package dashboard builds the consolidated dashboard snapshot from the
// independent backend reads.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/Veraticus/kitty/internal/metrics"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/resolver"
	"github.com/Veraticus/kitty/internal/source"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Source names, as reported in DashboardSnapshot.Absent.
const (
	SourceProfile      = "profile"
	SourceGroups       = "groups"
	SourceTotalSavings = "total_savings"
	SourceUpcoming     = "upcoming_contributions"
	SourceGroupTotals  = "group_contribution_totals"
	SourcePendingLoans = "pending_loans"
)

// phaseOneSources is the number of reads made before leader groups are known.
const phaseOneSources = 5

// Observer is told how many reads are planned and when each one settles.
// It is called from several goroutines.
type Observer interface {
	Planned(n int)
	Settled(source string, present bool)
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used by the aggregator and its fetchers.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithMetrics records aggregation and per-source outcomes.
func WithMetrics(m *metrics.Recorder) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// WithEndpoints overrides the read candidates.
func WithEndpoints(e Endpoints) Option {
	return func(a *Aggregator) {
		a.endpoints = e
	}
}

// WithClock replaces time.Now for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// Aggregator fans out the dashboard reads and joins them into a snapshot.
// It holds no state between calls.
type Aggregator struct {
	resolver  *resolver.Resolver
	logger    *slog.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	endpoints Endpoints
}

// New creates an Aggregator reading through r.
func New(r *resolver.Resolver, opts ...Option) *Aggregator {
	a := &Aggregator{
		resolver:  r,
		logger:    slog.Default(),
		now:       time.Now,
		endpoints: DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.endpoints = a.endpoints.WithDefaults()
	return a
}

func (a *Aggregator) deps() source.Deps {
	return source.Deps{Resolver: a.resolver, Logger: a.logger, Metrics: a.metrics}
}

// Aggregate builds a snapshot. It never fails: every source that cannot be
// read falls back to its default and is listed in Absent. obs may be nil.
func (a *Aggregator) Aggregate(ctx context.Context, obs Observer) *model.DashboardSnapshot {
	start := time.Now()
	deps := a.deps()

	profile := source.New(deps, source.Spec[model.Profile]{
		Name:       SourceProfile,
		Candidates: resolver.Get(a.endpoints.Profile...),
		Rules:      source.Nested("user"),
		Decode:     source.Object[model.Profile](),
	})
	groups := source.New(deps, source.Spec[[]model.Group]{
		Name:       SourceGroups,
		Candidates: resolver.Get(a.endpoints.Groups...),
		Rules:      source.Nested("groups"),
		Decode:     source.List[model.Group](),
		Default:    []model.Group{},
	})
	savings := source.New(deps, source.Spec[decimal.Decimal]{
		Name:       SourceTotalSavings,
		Candidates: resolver.Get(a.endpoints.TotalSavings...),
		Rules:      source.Nested("totalSavings"),
		Decode:     source.Number(),
		Default:    decimal.Zero,
	})
	upcoming := source.New(deps, source.Spec[int]{
		Name:       SourceUpcoming,
		Candidates: resolver.Get(a.endpoints.Upcoming...),
		Rules:      source.Nested("count"),
		Decode:     source.Count(),
	})
	totals := source.New(deps, source.Spec[map[model.ID]decimal.Decimal]{
		Name:       SourceGroupTotals,
		Candidates: resolver.Get(a.endpoints.GroupTotals...),
		Rules:      source.Nested("totals"),
		Decode:     decodeTotals,
		Default:    map[model.ID]decimal.Decimal{},
	})

	var (
		absent      [phaseOneSources]string
		profileRes  source.Result[model.Profile]
		groupsRes   source.Result[[]model.Group]
		savingsRes  source.Result[decimal.Decimal]
		upcomingRes source.Result[int]
		totalsRes   source.Result[map[model.ID]decimal.Decimal]
	)

	if obs != nil {
		obs.Planned(phaseOneSources)
	}

	g, gctx := errgroup.WithContext(ctx)
	settle := func(slot int, name string, present bool) {
		if !present {
			absent[slot] = name
		}
		if obs != nil {
			obs.Settled(name, present)
		}
	}
	g.Go(func() error {
		profileRes = profile.Fetch(gctx)
		settle(0, profile.Name(), profileRes.IsPresent())
		return nil
	})
	g.Go(func() error {
		groupsRes = groups.Fetch(gctx)
		settle(1, groups.Name(), groupsRes.IsPresent())
		return nil
	})
	g.Go(func() error {
		savingsRes = savings.Fetch(gctx)
		settle(2, savings.Name(), savingsRes.IsPresent())
		return nil
	})
	g.Go(func() error {
		upcomingRes = upcoming.Fetch(gctx)
		settle(3, upcoming.Name(), upcomingRes.IsPresent())
		return nil
	})
	g.Go(func() error {
		totalsRes = totals.Fetch(gctx)
		settle(4, totals.Name(), totalsRes.IsPresent())
		return nil
	})
	_ = g.Wait()

	snapshot := &model.DashboardSnapshot{
		DisplayName:                displayName(profileRes),
		Groups:                     groupsRes.OrElse(groups.Default()),
		TotalSavings:               savingsRes.OrElse(savings.Default()),
		UpcomingContributionCount:  upcomingRes.OrElse(upcoming.Default()),
		PerGroupContributionTotals: totalsRes.OrElse(totals.Default()),
		PendingLoansByGroup:        map[model.ID][]model.LoanRequest{},
	}
	for _, name := range absent {
		if name != "" {
			snapshot.Absent = append(snapshot.Absent, name)
		}
	}

	a.fetchPendingLoans(ctx, snapshot, obs)

	snapshot.FetchedAt = a.now()
	a.metrics.AggregationCompleted(time.Since(start))
	a.logger.Debug("Dashboard aggregated",
		"groups", len(snapshot.Groups),
		"leader_groups", len(snapshot.PendingLoansByGroup),
		"absent", snapshot.Absent,
		"duration", time.Since(start))

	return snapshot
}

// fetchPendingLoans reads the pending loan requests of every group the
// viewer leads. It runs only once the group list is settled.
func (a *Aggregator) fetchPendingLoans(ctx context.Context, snapshot *model.DashboardSnapshot, obs Observer) {
	leaders := snapshot.LeaderGroups()
	if len(leaders) == 0 {
		return
	}
	if obs != nil {
		obs.Planned(len(leaders))
	}

	results := make([]source.Result[[]model.LoanRequest], len(leaders))
	g, gctx := errgroup.WithContext(ctx)
	for i, group := range leaders {
		fetcher := a.loanRequests(group.ID)
		g.Go(func() error {
			results[i] = fetcher.Fetch(gctx)
			if obs != nil {
				obs.Settled(fetcher.Name(), results[i].IsPresent())
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, group := range leaders {
		loans, ok := results[i].Get()
		if !ok {
			snapshot.Absent = append(snapshot.Absent, SourcePendingLoans+":"+group.ID.String())
			snapshot.PendingLoansByGroup[group.ID] = []model.LoanRequest{}
			continue
		}
		snapshot.PendingLoansByGroup[group.ID] = pendingOnly(loans)
	}
}

func (a *Aggregator) loanRequests(groupID model.ID) *source.Fetcher[[]model.LoanRequest] {
	return source.New(a.deps(), source.Spec[[]model.LoanRequest]{
		Name:       SourcePendingLoans + ":" + groupID.String(),
		Candidates: a.endpoints.pendingLoans(groupID),
		Rules:      source.Nested("loanRequests"),
		Decode:     source.List[model.LoanRequest](),
		Default:    []model.LoanRequest{},
	})
}

// LoanRequests reads one group's loan requests through the pending-loans
// routes. Unlike the dashboard, it keeps whatever statuses the server
// returned, so callers can tell a decided request from a missing one.
func (a *Aggregator) LoanRequests(ctx context.Context, groupID model.ID) source.Result[[]model.LoanRequest] {
	return a.loanRequests(groupID).Fetch(ctx)
}

// pendingOnly drops requests the server returned despite the status filter.
func pendingOnly(loans []model.LoanRequest) []model.LoanRequest {
	out := make([]model.LoanRequest, 0, len(loans))
	for _, l := range loans {
		if l.IsPending() {
			out = append(out, l)
		}
	}
	return out
}

func displayName(res source.Result[model.Profile]) string {
	if p, ok := res.Get(); ok {
		if name := p.DisplayName(); name != "" {
			return name
		}
	}
	return model.DefaultDisplayName
}
