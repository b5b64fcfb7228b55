package platform

import (
	"context"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/dealhound/dealhound/models"
)

const swiggyBaseURL = "https://www.swiggy.com"

// SwiggyAdapter scrapes swiggy.com. On top of the shared site behavior it
// carries native cart verification and removal.
type SwiggyAdapter struct {
	site
}

// NewSwiggy builds the Swiggy adapter with its own isolated session.
func NewSwiggy(opts Options) (*SwiggyAdapter, error) {
	session, err := NewSession(swiggyBaseURL, opts)
	if err != nil {
		return nil, err
	}
	return &SwiggyAdapter{site: site{
		name:    "Swiggy",
		baseURL: swiggyBaseURL,
		cartURL: swiggyBaseURL + "/checkout",
		session: session,
		sel: selectors{
			cards:      "a[href*='/restaurant/'], div[data-testid*='restaurant'], div[class*='RestaurantList']",
			names:      []string{"h3", "h4", "div[class*='name']", "div[class*='title']"},
			rating:     "div[class*='rating'], span[class*='rating']",
			cartItems:  "div[data-testid='cart-item']",
			cartName:   "div[class*='itemName'], div[class*='name']",
			cartPrice:  "span[class*='price'], div[class*='price']",
			cartRemove: "a[class*='remove']",
		},
	}}, nil
}

// VerifyCart reloads the checkout page and confirms the offer is present
// under its final price.
func (a *SwiggyAdapter) VerifyCart(ctx context.Context, offer *models.Offer) (bool, error) {
	found := false
	err := a.session.Scrape(ctx, a.cartURL, a.sel.cartItems, func(e *colly.HTMLElement) {
		if found {
			return
		}
		name := strings.TrimSpace(e.ChildText(a.sel.cartName))
		if !strings.EqualFold(name, offer.ItemName) {
			return
		}
		if offer.FinalPrice != nil && !strings.Contains(e.Text, models.FormatPrice(*offer.FinalPrice)) {
			return
		}
		found = true
	})
	if err != nil {
		return false, ActionError{Platform: a.name, Op: "verify_cart", Err: err}
	}
	return found, nil
}

// RemoveFromCart drops the cart entry matching the offer. A cart that no
// longer holds the entry counts as removed.
func (a *SwiggyAdapter) RemoveFromCart(ctx context.Context, offer *models.Offer) error {
	entries, err := a.CartEntries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name, offer.ItemName) {
			return a.RemoveEntry(ctx, entry)
		}
	}
	return nil
}
