package report

import (
	"time"

	"github.com/dealhound/dealhound/models"
)

// Build assembles the aggregate run report. Total options are summed from
// the per-platform reports, so the aggregate count always matches what the
// platform sections show.
func Build(criteria models.Criteria, reports []*models.PlatformReport, best *models.Offer, outcome *models.CommitOutcome, elapsed time.Duration) *models.RunReport {
	total := 0
	platforms := make([]string, 0, len(reports))
	for _, r := range reports {
		platforms = append(platforms, r.Platform)
		total += len(r.Results)
	}
	return &models.RunReport{
		Criteria:           criteria,
		PlatformsProcessed: platforms,
		TotalOptions:       total,
		BestDeal:           best,
		Commit:             outcome,
		PlatformReports:    reports,
		ExecutionSeconds:   models.Round2(elapsed.Seconds()),
		Timestamp:          time.Now(),
	}
}
