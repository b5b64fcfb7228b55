// Package models defines the data entities shared across dealhound.
package models

import (
	"fmt"
	"strings"
)

// Defaults applied when a criteria field is left at its zero value.
const (
	DefaultMinRating             = 3.8
	DefaultMaxResultsPerPlatform = 5
)

// Criteria describes one search: which items to look for and which offers
// qualify. Construct through NewCriteria and treat the result as read-only.
type Criteria struct {
	Items                 []string `json:"food_items" yaml:"food_items"`
	MinRating             float64  `json:"min_rating" yaml:"min_rating"`
	PriceMin              *float64 `json:"price_min,omitempty" yaml:"price_min,omitempty"`
	PriceMax              *float64 `json:"price_max,omitempty" yaml:"price_max,omitempty"`
	MaxResultsPerPlatform int      `json:"max_results_per_platform" yaml:"max_results_per_platform"`
	Location              string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// NewCriteria normalizes and validates raw criteria: item names are trimmed,
// empty entries dropped, and zero-valued knobs replaced with defaults.
func NewCriteria(raw Criteria) (Criteria, error) {
	c := raw

	items := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	c.Items = items

	if c.MinRating == 0 {
		c.MinRating = DefaultMinRating
	}
	if c.MaxResultsPerPlatform == 0 {
		c.MaxResultsPerPlatform = DefaultMaxResultsPerPlatform
	}
	c.Location = strings.TrimSpace(c.Location)

	if err := c.validate(); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

// Accepts reports whether an offer passes the rating and price filters.
// Offers whose rating or price could not be extracted are kept.
func (c Criteria) Accepts(o *Offer) bool {
	if o == nil {
		return false
	}
	if o.Rating != nil && *o.Rating < c.MinRating {
		return false
	}
	if o.FinalPrice != nil {
		if c.PriceMin != nil && *o.FinalPrice < *c.PriceMin {
			return false
		}
		if c.PriceMax != nil && *o.FinalPrice > *c.PriceMax {
			return false
		}
	}
	return true
}

func (c Criteria) validate() error {
	if len(c.Items) == 0 {
		return &ValidationError{Field: "food_items", Reason: "at least one item is required"}
	}
	if c.MinRating < 0 || c.MinRating > 5 {
		return &ValidationError{Field: "min_rating", Reason: "must be between 0 and 5"}
	}
	if c.MaxResultsPerPlatform <= 0 {
		return &ValidationError{Field: "max_results_per_platform", Reason: "must be positive"}
	}
	if c.PriceMin != nil && *c.PriceMin < 0 {
		return &ValidationError{Field: "price_min", Reason: "cannot be negative"}
	}
	if c.PriceMax != nil && *c.PriceMax < 0 {
		return &ValidationError{Field: "price_max", Reason: "cannot be negative"}
	}
	if c.PriceMin != nil && c.PriceMax != nil && *c.PriceMin > *c.PriceMax {
		return &ValidationError{Field: "price_min", Reason: "cannot exceed price_max"}
	}
	return nil
}

// ValidationError reports criteria that cannot be searched. It is surfaced
// before any platform is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid criteria: %s: %s", e.Field, e.Reason)
}
