package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealhound/dealhound/models"
)

func sampleReport(t *testing.T) *models.RunReport {
	t.Helper()
	criteria, err := models.NewCriteria(models.Criteria{Items: []string{"pizza", "burger"}})
	require.NoError(t, err)

	best := &models.Offer{
		Platform:    "Swiggy",
		Restaurant:  "Pizza Palace",
		ItemName:    "Margherita Pizza",
		Rating:      models.Float(4.5),
		Price:       models.Float(300),
		FinalPrice:  models.Float(250),
		DiscountPct: models.Float(16.67),
	}
	swiggy := &models.PlatformReport{
		Platform:   "Swiggy",
		Available:  true,
		ItemsFound: 3,
		Extracted:  3,
		Errors:     []string{},
		Latency:    1200 * time.Millisecond,
		Results: []*models.Offer{
			best,
			{
				Platform:   "Swiggy",
				Restaurant: "Slice House With A Very Long Name Indeed",
				ItemName:   "Pepperoni Pizza",
				FinalPrice: models.Float(320),
			},
			{
				Platform:   "Swiggy",
				Restaurant: "Crusty Corner",
				ItemName:   "Farmhouse Pizza",
				Rating:     models.Float(4.1),
			},
		},
	}
	zomato := &models.PlatformReport{
		Platform:  "Zomato",
		Available: false,
		Errors: []string{
			"Zomato unavailable: status 502",
			`search "pizza" on Zomato: status 503`,
			`search "burger" on Zomato: status 503`,
			"timeout after 30s",
			"view_cart on Zomato: status 500",
			"search cancelled",
		},
		Results: []*models.Offer{},
	}
	outcome := &models.CommitOutcome{Committed: true, Attempts: 1, Token: "tok-1"}

	return Build(criteria, []*models.PlatformReport{swiggy, zomato}, best, outcome, 1620*time.Millisecond)
}

// TestRenderGolden compares the full rendered report against the checked-in
// fixture. Styling is pinned to the plain profile so the bytes are stable
// everywhere.
func TestRenderGolden(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(sampleReport(t)))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "run_report", buf.Bytes())
}

// TestRenderCapsErrorLines checks that a platform section shows at most five
// problems.
func TestRenderCapsErrorLines(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(sampleReport(t)))

	assert.NotContains(t, buf.String(), "search cancelled")
	assert.Contains(t, buf.String(), "view_cart on Zomato: status 500")
}

// TestRenderEmptyRun checks the layout when nothing was found: no best-deal
// block, no options table.
func TestRenderEmptyRun(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	criteria, err := models.NewCriteria(models.Criteria{Items: []string{"pizza"}})
	require.NoError(t, err)
	r := Build(criteria, []*models.PlatformReport{
		{Platform: "Swiggy", Available: true, Errors: []string{}, Results: []*models.Offer{}},
	}, nil, nil, time.Second)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(r))

	out := buf.String()
	assert.Contains(t, out, "Total options found: 0")
	assert.NotContains(t, out, "Best Deal")
	assert.NotContains(t, out, "All Options")
}

// TestRenderFailedCommit checks the committed line for an exhausted commit.
func TestRenderFailedCommit(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	r := sampleReport(t)
	r.Commit = &models.CommitOutcome{Committed: false, Attempts: 3}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf).Render(r))

	assert.Contains(t, buf.String(), "Committed:  no (3 attempts)")
}

// TestTruncate checks rune-safe shortening of long names.
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 30))
	assert.Len(t, []rune(truncate(strings.Repeat("₹", 40), 30)), 30)
}
