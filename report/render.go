package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dealhound/dealhound/models"
)

const cellWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#50C878"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#888888"))
)

// Renderer writes the human-readable comparison report. Layout is fixed
// width; styling degrades to plain text on non-color terminals.
type Renderer struct {
	out io.Writer
}

func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// Render writes the full report: summary, best deal, options table and
// per-platform problem sections.
func (rd *Renderer) Render(r *models.RunReport) error {
	var b strings.Builder

	b.WriteString("\n" + titleStyle.Render("Food Delivery Comparison Report") + "\n")
	fmt.Fprintf(&b, "Searched for: %s\n", strings.Join(r.Criteria.Items, ", "))
	fmt.Fprintf(&b, "Execution time: %ss\n", num(r.ExecutionSeconds))
	fmt.Fprintf(&b, "Total options found: %d\n", r.TotalOptions)

	if r.BestDeal != nil {
		renderBestDeal(&b, r.BestDeal, r.Commit)
	}
	if r.TotalOptions > 0 {
		renderOptions(&b, r.PlatformReports)
	}
	renderProblems(&b, r.PlatformReports)

	_, err := io.WriteString(rd.out, b.String())
	return err
}

func renderBestDeal(b *strings.Builder, best *models.Offer, commit *models.CommitOutcome) {
	b.WriteString("\n" + sectionStyle.Render("Best Deal") + "\n")
	fmt.Fprintf(b, "  Platform:   %s\n", best.Platform)
	fmt.Fprintf(b, "  Restaurant: %s\n", best.Restaurant)
	fmt.Fprintf(b, "  Item:       %s\n", best.ItemName)
	fmt.Fprintf(b, "  Price:      %s\n", priceCell(best.FinalPrice))
	if best.Rating != nil {
		fmt.Fprintf(b, "  Rating:     %s\n", num(*best.Rating))
	}
	if best.DiscountPct != nil && *best.DiscountPct > 0 {
		fmt.Fprintf(b, "  Discount:   %s%% off\n", num(*best.DiscountPct))
	}
	if best.Coupon != "" {
		fmt.Fprintf(b, "  Coupon:     %s\n", best.Coupon)
	}
	if commit != nil {
		fmt.Fprintf(b, "  Committed:  %s\n", commitCell(commit))
	}
}

func renderOptions(b *strings.Builder, reports []*models.PlatformReport) {
	b.WriteString("\n" + sectionStyle.Render("All Options") + "\n")
	header := fmt.Sprintf("  %-10s %-*s %-*s %-10s %s",
		"PLATFORM", cellWidth, "RESTAURANT", cellWidth, "ITEM", "PRICE", "RATING")
	b.WriteString(headerStyle.Render(header) + "\n")
	for _, pr := range reports {
		for _, res := range pr.Results {
			fmt.Fprintf(b, "  %-10s %-*s %-*s %-10s %s\n",
				res.Platform,
				cellWidth, truncate(res.Restaurant, cellWidth),
				cellWidth, truncate(res.ItemName, cellWidth),
				priceCell(res.FinalPrice),
				ratingCell(res.Rating),
			)
		}
	}
}

func renderProblems(b *strings.Builder, reports []*models.PlatformReport) {
	for _, pr := range reports {
		if pr.Available && len(pr.Errors) == 0 {
			continue
		}
		label := pr.Platform
		if !pr.Available {
			label += " (unavailable)"
		}
		b.WriteString("\n" + warnStyle.Render(label+" problems:") + "\n")
		errs := pr.Errors
		if len(errs) > 5 {
			errs = errs[:5]
		}
		for _, e := range errs {
			fmt.Fprintf(b, "  - %s\n", e)
		}
	}
}

func priceCell(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return "₹" + models.FormatPrice(*p)
}

func ratingCell(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return num(*r)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func commitCell(c *models.CommitOutcome) string {
	attempts := "attempt"
	if c.Attempts != 1 {
		attempts = "attempts"
	}
	if c.Committed {
		return fmt.Sprintf("yes (%d %s)", c.Attempts, attempts)
	}
	return fmt.Sprintf("no (%d %s)", c.Attempts, attempts)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
