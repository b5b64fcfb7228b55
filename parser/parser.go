package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dealhound/dealhound/models"
)

// ValidateOffer ensures a scraped offer carries the fields the report needs.
func ValidateOffer(o *models.Offer) error {
	if o == nil {
		return fmt.Errorf("offer is nil")
	}
	if strings.TrimSpace(o.Platform) == "" {
		return fmt.Errorf("offer missing platform")
	}
	if strings.TrimSpace(o.ItemName) == "" {
		return fmt.Errorf("offer missing item name")
	}
	if strings.TrimSpace(o.Restaurant) == "" {
		return fmt.Errorf("offer missing restaurant for %s", o.ItemName)
	}
	if o.FinalPrice == nil {
		return fmt.Errorf("offer missing final price for %s", o.ItemName)
	}
	return nil
}

// Price extracts a numeric price from raw card text. Currency glyphs,
// separators and labels are stripped; nil means nothing parseable.
func Price(text string) *float64 {
	cleaned := strings.NewReplacer("₹", "", "Rs.", "", "Rs", "", ",", "").Replace(text)
	cleaned = keepNumeric(cleaned)
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Rating extracts a star rating from raw card text. Values outside the
// 0-5 scale are treated as noise and dropped.
func Rating(text string) *float64 {
	cleaned := keepNumeric(text)
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if v < 0 || v > 5 {
		return nil
	}
	return &v
}

func keepNumeric(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= '0' && ch <= '9') || ch == '.' {
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
