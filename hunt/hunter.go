package hunt

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/platform"
	"github.com/dealhound/dealhound/report"
)

// Settings carries the orchestration and commit knobs for a hunt. Timeouts,
// attempt counts and backoff are always passed in explicitly, never read
// from ambient state.
type Settings struct {
	SearchTimeout time.Duration
	Commit        CommitPolicy
	DedupeSize    int
	SkipCommit    bool
	Tokens        TokenSource
	Metrics       *Metrics
}

// Hunter is the run-level entry point: scatter the search across all
// platforms, select the cheapest offer, commit it to its cart, and assemble
// the aggregate report.
type Hunter struct {
	registry     *platform.Registry
	orchestrator *Orchestrator
	coordinator  *Coordinator
	metrics      *Metrics
	skipCommit   bool
}

// NewHunter wires a hunter from its registry and settings.
func NewHunter(registry *platform.Registry, s Settings) (*Hunter, error) {
	size := s.DedupeSize
	if size <= 0 {
		size = 512
	}
	dedupe, err := NewDedupe(size)
	if err != nil {
		return nil, err
	}
	return &Hunter{
		registry:     registry,
		orchestrator: NewOrchestrator(registry, s.SearchTimeout, s.Metrics, dedupe),
		coordinator:  NewCoordinator(s.Commit, s.Tokens, s.Metrics),
		metrics:      s.Metrics,
		skipCommit:   s.SkipCommit,
	}, nil
}

// Run executes one full hunt. Platform failures never abort the run; when
// ctx is cancelled mid-run the partially built report comes back alongside
// ctx's error.
func (h *Hunter) Run(ctx context.Context, criteria models.Criteria) (*models.RunReport, error) {
	start := time.Now()
	h.metrics.IncRun()
	slog.Info("starting hunt",
		slog.String("items", strings.Join(criteria.Items, ", ")),
		slog.Int("platforms", len(h.registry.Names())),
	)

	offers, reports := h.orchestrator.RunAll(ctx, criteria)
	for _, o := range offers {
		o.ComputeDiscount()
	}

	best := SelectBest(offers)

	var outcome *models.CommitOutcome
	if best != nil && !h.skipCommit && ctx.Err() == nil {
		adapter, ok := h.registry.Lookup(best.Platform)
		if !ok {
			slog.Error("no adapter for winning platform", slog.String("platform", best.Platform))
		} else {
			outcome = h.coordinator.Commit(ctx, adapter, best)
			if !outcome.Committed {
				foldCommitFailure(reports, best.Platform, outcome)
			}
		}
	}

	r := report.Build(criteria, reports, best, outcome, time.Since(start))
	slog.Info("hunt completed",
		slog.Float64("seconds", r.ExecutionSeconds),
		slog.Int("options", r.TotalOptions),
	)
	return r, ctx.Err()
}

// foldCommitFailure surfaces a failed commit on the winning platform's
// report, where readers look for that platform's problems.
func foldCommitFailure(reports []*models.PlatformReport, platformName string, outcome *models.CommitOutcome) {
	for _, r := range reports {
		if r.Platform != platformName {
			continue
		}
		for _, reason := range outcome.Reasons {
			r.Errors = append(r.Errors, "commit "+reason)
		}
		return
	}
}
