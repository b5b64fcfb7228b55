package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/dealhound/dealhound/models"
)

func newTestSwiggy(t *testing.T, transport *httpmock.MockTransport) *SwiggyAdapter {
	t.Helper()
	a, err := NewSwiggy(Options{Timeout: 5 * time.Second, Transport: transport})
	if err != nil {
		t.Fatalf("new swiggy: %v", err)
	}
	return a
}

func htmlResponder(body string) httpmock.Responder {
	resp := httpmock.NewStringResponse(200, body)
	resp.Header.Set("Content-Type", "text/html")
	return httpmock.ResponderFromResponse(resp)
}

func searchPage(cards ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"root\">")
	for _, card := range cards {
		b.WriteString(card)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func swiggyCard(slug, name, rating, price string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<a href=\"/restaurant/%s\">", slug)
	fmt.Fprintf(&b, "<h3>%s</h3>", name)
	if rating != "" {
		fmt.Fprintf(&b, "<div class=\"sc-rating\">%s</div>", rating)
	}
	if price != "" {
		fmt.Fprintf(&b, "<span class=\"sc-price\">%s</span>", price)
	}
	b.WriteString("</a>")
	return b.String()
}

func cartPage(items ...string) string {
	var b strings.Builder
	b.WriteString("<html><body><div id=\"cart\">")
	for _, item := range items {
		b.WriteString(item)
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

func swiggyCartItem(name, price, removePath string) string {
	return fmt.Sprintf(
		"<div data-testid=\"cart-item\"><div class=\"itemName\">%s</div><span class=\"price\">₹%s</span><a class=\"remove\" href=\"%s\">Remove</a></div>",
		name, price, removePath,
	)
}

func testCriteria(t *testing.T, items ...string) models.Criteria {
	t.Helper()
	criteria, err := models.NewCriteria(models.Criteria{Items: items})
	if err != nil {
		t.Fatalf("criteria: %v", err)
	}
	return criteria
}

func TestSwiggySearchExtractsOffers(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL+"/search?q=pizza", htmlResponder(searchPage(
		swiggyCard("pizza-palace", "Pizza Palace", "4.2", "₹249"),
		swiggyCard("cheap-eats", "Cheap Eats", "3.1", "₹99"),
		swiggyCard("deluxe-pizzeria", "Deluxe Pizzeria", "4.5", "₹520"),
	)))

	a := newTestSwiggy(t, transport)
	offers, err := a.Search(context.Background(), testCriteria(t, "pizza"))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("offers=%d, want 2 (low-rated card filtered)", len(offers))
	}

	first := offers[0]
	if first.Platform != "Swiggy" {
		t.Fatalf("platform=%q, want Swiggy", first.Platform)
	}
	if first.Restaurant != "Pizza Palace" {
		t.Fatalf("restaurant=%q, want Pizza Palace", first.Restaurant)
	}
	if first.ItemName != "pizza" {
		t.Fatalf("item=%q, want pizza", first.ItemName)
	}
	if first.Rating == nil || *first.Rating != 4.2 {
		t.Fatalf("rating=%v, want 4.2", first.Rating)
	}
	if first.FinalPrice == nil || *first.FinalPrice != 249 {
		t.Fatalf("final price=%v, want 249", first.FinalPrice)
	}
	if first.URL != swiggyBaseURL+"/restaurant/pizza-palace" {
		t.Fatalf("url=%q not absolutized", first.URL)
	}
}

func TestSwiggySearchPriceBounds(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL+"/search?q=pizza", htmlResponder(searchPage(
		swiggyCard("budget", "Budget Bites", "4.0", "₹120"),
		swiggyCard("mid", "Mid Range", "4.0", "₹300"),
		swiggyCard("pricey", "Pricey Pies", "4.0", "₹900"),
	)))

	criteria := testCriteria(t, "pizza")
	criteria.PriceMin = models.Float(200)
	criteria.PriceMax = models.Float(500)

	a := newTestSwiggy(t, transport)
	offers, err := a.Search(context.Background(), criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(offers) != 1 || offers[0].Restaurant != "Mid Range" {
		t.Fatalf("offers=%v, want only Mid Range", offers)
	}
}

func TestSwiggySearchCapsResultsPerItem(t *testing.T) {
	cards := make([]string, 0, 8)
	for i := 1; i <= 8; i++ {
		cards = append(cards, swiggyCard(
			fmt.Sprintf("place-%d", i),
			fmt.Sprintf("Place %d", i),
			"4.5",
			fmt.Sprintf("₹%d", 100+i),
		))
	}
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL+"/search?q=pizza", htmlResponder(searchPage(cards...)))

	criteria := testCriteria(t, "pizza")
	criteria.MaxResultsPerPlatform = 3

	a := newTestSwiggy(t, transport)
	offers, err := a.Search(context.Background(), criteria)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(offers) != 3 {
		t.Fatalf("offers=%d, want 3", len(offers))
	}
}

func TestSwiggySearchPartialItemFailure(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL+"/search?q=pizza", htmlResponder(searchPage(
		swiggyCard("pizza-palace", "Pizza Palace", "4.2", "₹249"),
	)))
	transport.RegisterResponder("GET", swiggyBaseURL+"/search?q=burger",
		httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	a := newTestSwiggy(t, transport)
	offers, err := a.Search(context.Background(), testCriteria(t, "pizza", "burger"))
	if err == nil {
		t.Fatalf("expected error for failed item")
	}
	var serr SearchError
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a SearchError", err)
	}
	if serr.Item != "burger" {
		t.Fatalf("failed item=%q, want burger", serr.Item)
	}
	if len(offers) != 1 {
		t.Fatalf("offers=%d, want 1 despite the failed item", len(offers))
	}
}

func TestSwiggyInitializeUnavailable(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))
	transport.RegisterResponder("GET", swiggyBaseURL+"/",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	a := newTestSwiggy(t, transport)
	err := a.Initialize(context.Background())
	if err == nil {
		t.Fatalf("expected initialize failure")
	}
	var uerr UnavailableError
	if !errors.As(err, &uerr) {
		t.Fatalf("error %v is not an UnavailableError", err)
	}
	if uerr.Platform != "Swiggy" {
		t.Fatalf("platform=%q, want Swiggy", uerr.Platform)
	}
}

func TestSwiggyCartRoundTrip(t *testing.T) {
	var gotForm map[string]string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("POST", swiggyBaseURL+"/cart/add",
		func(req *http.Request) (*http.Response, error) {
			if err := req.ParseForm(); err != nil {
				return nil, err
			}
			gotForm = map[string]string{
				"item":            req.PostForm.Get("item"),
				"idempotency_key": req.PostForm.Get("idempotency_key"),
			}
			return httpmock.NewStringResponse(200, "ok"), nil
		})
	transport.RegisterResponder("GET", swiggyBaseURL+"/checkout", htmlResponder(cartPage(
		swiggyCartItem("pizza", "249", "/checkout/remove/1"),
	)))
	removed := false
	transport.RegisterResponder("POST", swiggyBaseURL+"/checkout/remove/1",
		func(*http.Request) (*http.Response, error) {
			removed = true
			return httpmock.NewStringResponse(200, "ok"), nil
		})

	a := newTestSwiggy(t, transport)
	ctx := context.Background()
	offer := &models.Offer{
		Platform:   "Swiggy",
		Restaurant: "Pizza Palace",
		ItemName:   "pizza",
		Price:      models.Float(249),
		FinalPrice: models.Float(249),
	}

	if err := a.AddToCart(ctx, offer, "tok-123"); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	if gotForm["item"] != "pizza" || gotForm["idempotency_key"] != "tok-123" {
		t.Fatalf("cart add form=%v, token not forwarded", gotForm)
	}

	ok, err := a.VerifyCart(ctx, offer)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("verify=false, offer should be in cart")
	}

	entries, err := a.CartEntries(ctx)
	if err != nil {
		t.Fatalf("cart entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "pizza" {
		t.Fatalf("entries=%v, want single pizza entry", entries)
	}
	if entries[0].RemoveRef != swiggyBaseURL+"/checkout/remove/1" {
		t.Fatalf("remove ref=%q not absolutized", entries[0].RemoveRef)
	}

	if err := a.RemoveFromCart(ctx, offer); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Fatalf("remove control was not driven")
	}
}

func TestSwiggyVerifyCartMissingEntry(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", swiggyBaseURL+"/checkout", htmlResponder(cartPage(
		swiggyCartItem("burger", "99", "/checkout/remove/7"),
	)))

	a := newTestSwiggy(t, transport)
	offer := &models.Offer{ItemName: "pizza", FinalPrice: models.Float(249)}

	ok, err := a.VerifyCart(context.Background(), offer)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("verify=true for an offer missing from the cart")
	}

	// Removing an absent entry is a no-op, the cart already matches.
	if err := a.RemoveFromCart(context.Background(), offer); err != nil {
		t.Fatalf("remove absent entry: %v", err)
	}
}

func TestSwiggyCapabilities(t *testing.T) {
	a := newTestSwiggy(t, httpmock.NewMockTransport())
	var _ Adapter = a
	var _ Verifier = a
	var _ Compensator = a
	var _ CartViewer = a
}
