package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/platform"
)

// Mode names the retry policy a commit runs under.
type Mode int

const (
	// ConsistencyFirst retries failed commits up to MaxAttempts, always
	// compensating a failed verification before the next attempt.
	ConsistencyFirst Mode = iota
	// AvailabilityFirst gives the commit a single cycle: one attempt, one
	// verification, at most one compensation.
	AvailabilityFirst
)

func (m Mode) String() string {
	if m == AvailabilityFirst {
		return "availability-first"
	}
	return "consistency-first"
}

// CommitPolicy carries the retry and backoff knobs for one coordinator.
type CommitPolicy struct {
	Mode          Mode
	MaxAttempts   int
	BackoffBase   time.Duration
	BackoffFactor float64
	BackoffMax    time.Duration
}

var errNoVerification = errors.New("platform exposes no cart verification")

// Coordinator drives the attempt, verify, compensate cycle for the winning
// offer. It is the only component that touches an adapter's cart operations,
// so intent, verification and compensation stay strictly ordered.
type Coordinator struct {
	policy  CommitPolicy
	tokens  TokenSource
	metrics *Metrics
}

// NewCoordinator builds a coordinator. tokens defaults to UUIDTokens and
// metrics may be nil.
func NewCoordinator(policy CommitPolicy, tokens TokenSource, metrics *Metrics) *Coordinator {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = time.Second
	}
	if policy.BackoffFactor <= 0 {
		policy.BackoffFactor = 2.0
	}
	if tokens == nil {
		tokens = UUIDTokens{}
	}
	return &Coordinator{policy: policy, tokens: tokens, metrics: metrics}
}

// Commit applies the offer to its platform's cart and verifies it landed.
// One idempotency token covers the whole logical commit: every retry sends
// the same token, so a deduplicating platform sees a single intent. Every
// failed verification is followed by exactly one compensation attempt before
// the coordinator retries or gives up.
func (c *Coordinator) Commit(ctx context.Context, adapter platform.Adapter, offer *models.Offer) *models.CommitOutcome {
	outcome := &models.CommitOutcome{
		Token:   c.tokens.Next(),
		Reasons: []string{},
	}
	name := adapter.Name()
	maxAttempts := c.policy.MaxAttempts
	if c.policy.Mode == AvailabilityFirst {
		maxAttempts = 1
	}

	slog.Info("committing best deal",
		slog.String("platform", name),
		slog.String("item", offer.ItemName),
		slog.String("mode", c.policy.Mode.String()),
		slog.String("token", outcome.Token),
	)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome.Attempts = attempt
		c.metrics.IncCommitAttempt(name)

		if err := adapter.AddToCart(ctx, offer, outcome.Token); err != nil {
			outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("attempt %d: %v", attempt, err))
			slog.Warn("cart add failed",
				slog.String("platform", name),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			if attempt == maxAttempts {
				break
			}
			if err := c.sleep(ctx, attempt); err != nil {
				outcome.Reasons = append(outcome.Reasons, "commit cancelled")
				break
			}
			continue
		}

		ok, err := c.verify(ctx, adapter, offer)
		if err != nil {
			if errors.Is(err, errNoVerification) {
				// Nothing to check against and nothing to compensate
				// with. Retrying cannot change that.
				outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("attempt %d: %v", attempt, err))
				break
			}
			outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("attempt %d: verify: %v", attempt, err))
		} else if ok {
			outcome.Committed = true
			break
		} else {
			outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("attempt %d: verification failed after apply", attempt))
		}

		c.compensate(ctx, adapter, offer, attempt, outcome)

		if attempt == maxAttempts {
			break
		}
		if err := c.sleep(ctx, attempt); err != nil {
			outcome.Reasons = append(outcome.Reasons, "commit cancelled")
			break
		}
	}

	if outcome.Committed {
		c.metrics.IncCommit(name, "success")
		slog.Info("commit verified",
			slog.String("platform", name),
			slog.Int("attempts", outcome.Attempts),
		)
	} else {
		c.metrics.IncCommit(name, "exhausted")
		slog.Error("commit exhausted",
			slog.String("platform", name),
			slog.Int("attempts", outcome.Attempts),
			slog.String("reasons", strings.Join(outcome.Reasons, "; ")),
		)
	}
	return outcome
}

// verify prefers the adapter's native check and falls back to scanning the
// cart view for the item name and a rendering of its final price.
func (c *Coordinator) verify(ctx context.Context, adapter platform.Adapter, offer *models.Offer) (bool, error) {
	if v, ok := adapter.(platform.Verifier); ok {
		return v.VerifyCart(ctx, offer)
	}
	viewer, ok := adapter.(platform.CartViewer)
	if !ok {
		return false, errNoVerification
	}

	entries, err := viewer.CartEntries(ctx)
	if err != nil {
		return false, err
	}
	want := ""
	if offer.FinalPrice != nil {
		want = models.FormatPrice(*offer.FinalPrice)
	}
	for _, entry := range entries {
		if !strings.EqualFold(entry.Name, offer.ItemName) {
			continue
		}
		if want != "" && !strings.Contains(entry.PriceText, want) {
			continue
		}
		return true, nil
	}
	return false, nil
}

// compensate undoes the attempted addition, preferring the adapter's native
// removal over driving a remove control from the cart view. Compensation is
// best-effort: its own failure is recorded but never retried.
func (c *Coordinator) compensate(ctx context.Context, adapter platform.Adapter, offer *models.Offer, attempt int, outcome *models.CommitOutcome) {
	var err error
	switch impl := adapter.(type) {
	case platform.Compensator:
		err = impl.RemoveFromCart(ctx, offer)
	case platform.CartViewer:
		err = removeViaView(ctx, impl, offer)
	default:
		err = errors.New("no compensation capability")
	}
	if err != nil {
		outcome.Reasons = append(outcome.Reasons, fmt.Sprintf("attempt %d: compensate: %v", attempt, err))
		slog.Warn("compensation failed",
			slog.String("platform", adapter.Name()),
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
	}
}

func removeViaView(ctx context.Context, viewer platform.CartViewer, offer *models.Offer) error {
	entries, err := viewer.CartEntries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, offer.ItemName) {
			return viewer.RemoveEntry(ctx, entry)
		}
	}
	// Entry already absent, the cart matches the pre-commit state.
	return nil
}

func (c *Coordinator) sleep(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Coordinator) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	delay := time.Duration(float64(c.policy.BackoffBase) * math.Pow(c.policy.BackoffFactor, float64(attempt-1)))
	if limit := c.policy.BackoffMax; limit > 0 && delay > limit {
		delay = limit
	}
	return delay
}
