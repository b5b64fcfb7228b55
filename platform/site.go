package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/parser"
)

// selectors holds the per-platform markup hooks the shared scraping core
// drives. Name selectors are tried in order until one yields text.
type selectors struct {
	cards      string
	names      []string
	rating     string
	cartItems  string
	cartName   string
	cartPrice  string
	cartRemove string
}

// site implements the behavior common to every delivery platform. Concrete
// adapters embed it and layer native capabilities on top.
type site struct {
	name    string
	baseURL string
	cartURL string
	session *Session
	sel     selectors
}

func (st *site) Name() string {
	return st.name
}

// Initialize loads the platform home page to establish the session.
func (st *site) Initialize(ctx context.Context) error {
	slog.Info("initializing platform", slog.String("platform", st.name))

	loginVisible := false
	err := st.session.Scrape(ctx, st.baseURL, "body", func(e *colly.HTMLElement) {
		text := strings.ToLower(e.Text)
		if strings.Contains(text, "login") || strings.Contains(text, "sign in") {
			loginVisible = true
		}
	})
	if err != nil {
		return UnavailableError{Platform: st.name, Err: err}
	}
	if loginVisible {
		slog.Warn("not logged in, some features may be limited", slog.String("platform", st.name))
	}
	return nil
}

// Search runs one search per requested item and keeps the offers passing the
// criteria filters. Items that fail individually do not abort the rest, the
// partial results come back alongside the joined errors.
func (st *site) Search(ctx context.Context, criteria models.Criteria) ([]*models.Offer, error) {
	var offers []*models.Offer
	var errs []error

	for _, item := range criteria.Items {
		slog.Info("searching",
			slog.String("platform", st.name),
			slog.String("item", item),
		)

		found, err := st.searchItem(ctx, item, criteria)
		if err != nil {
			errs = append(errs, SearchError{Platform: st.name, Item: item, Err: err})
			continue
		}
		slog.Info("search results",
			slog.String("platform", st.name),
			slog.String("item", item),
			slog.Int("offers", len(found)),
		)
		offers = append(offers, found...)
	}

	return offers, errors.Join(errs...)
}

func (st *site) searchItem(ctx context.Context, item string, criteria models.Criteria) ([]*models.Offer, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", st.baseURL, url.QueryEscape(item))

	var kept []*models.Offer
	seen := 0
	err := st.session.Scrape(ctx, searchURL, st.sel.cards, func(e *colly.HTMLElement) {
		if seen >= criteria.MaxResultsPerPlatform {
			return
		}
		seen++

		offer := st.extractOffer(e, item)
		if offer == nil {
			return
		}
		if !criteria.Accepts(offer) {
			return
		}
		kept = append(kept, offer)
	})
	if err != nil {
		return nil, err
	}
	return kept, nil
}

func (st *site) extractOffer(e *colly.HTMLElement, item string) *models.Offer {
	name := ""
	for _, sel := range st.sel.names {
		if name = strings.TrimSpace(e.ChildText(sel)); name != "" {
			break
		}
	}
	if name == "" {
		name = firstLine(e.Text)
	}
	if name == "" {
		return nil
	}

	price := parser.Price(priceText(e))
	var final *float64
	if price != nil {
		f := *price
		final = &f
	}

	offerURL := ""
	if href := e.Attr("href"); href != "" {
		offerURL = e.Request.AbsoluteURL(href)
	}

	return &models.Offer{
		Platform:   st.name,
		Restaurant: name,
		Rating:     parser.Rating(e.ChildText(st.sel.rating)),
		ItemName:   item,
		Price:      price,
		FinalPrice: final,
		URL:        offerURL,
		CapturedAt: time.Now(),
	}
}

// AddToCart submits the offer to the platform cart. The idempotency token
// rides along so a retried submit can be collapsed server-side.
func (st *site) AddToCart(ctx context.Context, offer *models.Offer, token string) error {
	form := map[string]string{
		"item":            offer.ItemName,
		"restaurant":      offer.Restaurant,
		"idempotency_key": token,
	}
	if err := st.session.Submit(ctx, st.baseURL+"/cart/add", form); err != nil {
		return ActionError{Platform: st.name, Op: "add_to_cart", Err: err}
	}
	return nil
}

// CartEntries reloads the cart page and returns its parsed line items.
func (st *site) CartEntries(ctx context.Context) ([]CartEntry, error) {
	var entries []CartEntry
	err := st.session.Scrape(ctx, st.cartURL, st.sel.cartItems, func(e *colly.HTMLElement) {
		ref := e.ChildAttr(st.sel.cartRemove, "href")
		if ref != "" {
			ref = e.Request.AbsoluteURL(ref)
		}
		entries = append(entries, CartEntry{
			Name:      strings.TrimSpace(e.ChildText(st.sel.cartName)),
			PriceText: strings.TrimSpace(e.ChildText(st.sel.cartPrice)),
			RemoveRef: ref,
		})
	})
	if err != nil {
		return nil, ActionError{Platform: st.name, Op: "view_cart", Err: err}
	}
	return entries, nil
}

// RemoveEntry drives the remove control of a cart entry.
func (st *site) RemoveEntry(ctx context.Context, entry CartEntry) error {
	if entry.RemoveRef == "" {
		return ActionError{Platform: st.name, Op: "remove_from_cart", Err: fmt.Errorf("cart entry %q has no remove control", entry.Name)}
	}
	if err := st.session.Submit(ctx, entry.RemoveRef, nil); err != nil {
		return ActionError{Platform: st.name, Op: "remove_from_cart", Err: err}
	}
	return nil
}

// Cleanup navigates back to the home page, resetting any search state.
func (st *site) Cleanup(ctx context.Context) error {
	return st.session.Scrape(ctx, st.baseURL, "title", func(*colly.HTMLElement) {})
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// priceText returns the text of the first element rendering a rupee amount,
// preferring leaf-level spans over enclosing blocks.
func priceText(e *colly.HTMLElement) string {
	pick := func(sel string) string {
		found := ""
		e.ForEach(sel, func(_ int, el *colly.HTMLElement) {
			if found == "" && strings.Contains(el.Text, "₹") {
				found = el.Text
			}
		})
		return found
	}
	if t := pick("span, p"); t != "" {
		return t
	}
	return pick("div")
}
