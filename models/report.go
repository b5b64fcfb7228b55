package models

import (
	"encoding/json"
	"time"
)

// PlatformReport records how one platform behaved during a run. Exactly one
// exists per adapter per run; the orchestrator task running that adapter owns
// it until the run report is built, after which it is never mutated.
type PlatformReport struct {
	Platform   string        `json:"platform"`
	ItemsFound int           `json:"items_found"`
	Extracted  int           `json:"successful_additions"`
	Errors     []string      `json:"errors"`
	Available  bool          `json:"available"`
	Latency    time.Duration `json:"-"`
	Results    []*Offer      `json:"results"`
}

// MarshalJSON renders latency in milliseconds so report files stay readable.
func (r *PlatformReport) MarshalJSON() ([]byte, error) {
	type alias PlatformReport
	return json.Marshal(&struct {
		*alias
		LatencyMS int64 `json:"latency_ms"`
	}{
		alias:     (*alias)(r),
		LatencyMS: r.Latency.Milliseconds(),
	})
}

// RunReport is the aggregate outcome of one run: the criteria, everything
// found, the selected best deal, and per-platform accounting. Built once at
// the end of a run and never mutated afterwards.
type RunReport struct {
	Criteria           Criteria          `json:"search_request"`
	PlatformsProcessed []string          `json:"platforms_processed"`
	TotalOptions       int               `json:"total_options"`
	BestDeal           *Offer            `json:"best_deal"`
	Commit             *CommitOutcome    `json:"commit_outcome,omitempty"`
	PlatformReports    []*PlatformReport `json:"platform_reports"`
	ExecutionSeconds   float64           `json:"execution_time_seconds"`
	Timestamp          time.Time         `json:"timestamp"`
}

// CommitOutcome is the result of attempting to commit the best deal to its
// platform's cart. It is ephemeral: on failure its reasons are folded into
// the winning platform's report errors.
type CommitOutcome struct {
	Committed bool     `json:"committed"`
	Attempts  int      `json:"attempts"`
	Token     string   `json:"idempotency_token,omitempty"`
	Reasons   []string `json:"reasons,omitempty"`
}
