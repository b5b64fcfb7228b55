package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/parser"
	"github.com/dealhound/dealhound/platform"
)

// Orchestrator fans the search phase out across all registered platforms,
// one task per adapter, each bounded by its own timeout. A slow or failing
// platform never delays or suppresses the others' results.
type Orchestrator struct {
	registry *platform.Registry
	timeout  time.Duration
	metrics  *Metrics
	dedupe   *Dedupe
}

// NewOrchestrator wires the scatter-gather phase. metrics and dedupe may be
// nil.
func NewOrchestrator(registry *platform.Registry, timeout time.Duration, metrics *Metrics, dedupe *Dedupe) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{
		registry: registry,
		timeout:  timeout,
		metrics:  metrics,
		dedupe:   dedupe,
	}
}

// RunAll searches every platform concurrently and collects what arrived in
// time. Offers are concatenated in adapter registration order, never in
// completion order, so equal-price ties resolve the same way on every run.
func (o *Orchestrator) RunAll(ctx context.Context, criteria models.Criteria) ([]*models.Offer, []*models.PlatformReport) {
	adapters := o.registry.All()
	reports := make([]*models.PlatformReport, len(adapters))

	var wg sync.WaitGroup
	for i, a := range adapters {
		wg.Add(1)
		go func(i int, a platform.Adapter) {
			defer wg.Done()
			reports[i] = o.runAdapter(ctx, a, criteria)
		}(i, a)
	}
	wg.Wait()

	var offers []*models.Offer
	for _, r := range reports {
		offers = append(offers, r.Results...)
	}
	return offers, reports
}

type searchResult struct {
	offers []*models.Offer
	err    error
}

// runAdapter owns one platform's report for the whole task. The timeout is a
// hard deadline: an adapter still in flight when it expires is abandoned and
// its eventual result discarded.
func (o *Orchestrator) runAdapter(ctx context.Context, a platform.Adapter, criteria models.Criteria) *models.PlatformReport {
	report := &models.PlatformReport{
		Platform: a.Name(),
		Errors:   []string{},
		Results:  []*models.Offer{},
	}
	start := time.Now()

	actx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan searchResult, 1)
	go func() {
		var res searchResult
		if err := a.Initialize(actx); err != nil {
			res.err = err
			done <- res
			return
		}
		res.offers, res.err = a.Search(actx, criteria)
		if err := a.Cleanup(actx); err != nil {
			slog.Debug("platform cleanup failed",
				slog.String("platform", a.Name()),
				slog.Any("error", err),
			)
		}
		done <- res
	}()

	select {
	case <-actx.Done():
		report.Latency = time.Since(start)
		if errors.Is(actx.Err(), context.DeadlineExceeded) {
			report.Errors = append(report.Errors, fmt.Sprintf("timeout after %s", o.timeout))
			o.metrics.IncSearchError(a.Name(), "timeout")
			slog.Warn("platform timed out",
				slog.String("platform", a.Name()),
				slog.Duration("timeout", o.timeout),
			)
		} else {
			report.Errors = append(report.Errors, "search cancelled")
			slog.Warn("platform search cancelled", slog.String("platform", a.Name()))
		}
	case res := <-done:
		report.Latency = time.Since(start)
		o.recordResult(report, a.Name(), res)
	}

	o.metrics.ObserveSearch(a.Name(), report.Latency)
	return report
}

func (o *Orchestrator) recordResult(report *models.PlatformReport, name string, res searchResult) {
	offers := o.dedupe.Filter(res.offers)

	if res.err != nil {
		errs := errorList(res.err)
		for _, e := range errs {
			report.Errors = append(report.Errors, e.Error())
			o.metrics.IncSearchError(name, categoryLabel(e))
		}
		slog.Error("platform search errors",
			slog.String("platform", name),
			slog.Int("errors", len(errs)),
			slog.Any("error", res.err),
		)
	}

	// A platform that produced nothing and errored is down for this run;
	// partial per-item failures leave it available.
	report.Available = res.err == nil || len(offers) > 0
	report.Results = offers
	report.ItemsFound = len(offers)
	for _, offer := range offers {
		if parser.ValidateOffer(offer) == nil {
			report.Extracted++
		}
	}
	o.metrics.AddOffers(name, len(offers))
}
