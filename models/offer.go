package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Offer is one priced, rated candidate result for a requested item from one
// platform. Price fields are pointers: nil means the value could not be
// extracted from the source.
type Offer struct {
	Platform    string    `json:"platform"`
	Restaurant  string    `json:"restaurant_name"`
	Rating      *float64  `json:"rating"`
	ItemName    string    `json:"item_name"`
	Price       *float64  `json:"item_price"`
	FinalPrice  *float64  `json:"final_price"`
	DiscountPct *float64  `json:"discount_percentage"`
	Coupon      string    `json:"coupon_applied,omitempty"`
	URL         string    `json:"url,omitempty"`
	CapturedAt  time.Time `json:"timestamp"`
}

// ComputeDiscount recomputes the discount percentage from the observed and
// final prices. When either price is unknown, or the observed price is not
// positive, the discount is left unset.
func (o *Offer) ComputeDiscount() {
	if o.Price == nil || o.FinalPrice == nil || *o.Price <= 0 {
		return
	}
	pct := Round2((*o.Price - *o.FinalPrice) / *o.Price * 100)
	o.DiscountPct = &pct
}

// Key is the identity used to de-duplicate offers across a run: platforms
// frequently render the same restaurant card more than once per results page.
func (o *Offer) Key() string {
	return strings.ToLower(o.Platform) + "|" + strings.ToLower(o.Restaurant) + "|" + strings.ToLower(o.ItemName)
}

// Round2 rounds to two decimal places, the precision used for prices and
// discount percentages throughout.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatPrice renders a price the way platform pages display it, without
// insignificant trailing zeros.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Float returns a pointer to v, for filling optional price/rating fields.
func Float(v float64) *float64 {
	return &v
}
