// Package platform defines the delivery-platform adapter contract and the
// Swiggy and Zomato implementations built on top of a shared scraping session.
package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/dealhound/dealhound/models"
)

// Adapter is the capability every platform must provide. Search may return
// partial results alongside a joined error when only some items failed.
type Adapter interface {
	Name() string
	Initialize(ctx context.Context) error
	Search(ctx context.Context, criteria models.Criteria) ([]*models.Offer, error)
	AddToCart(ctx context.Context, offer *models.Offer, token string) error
	Cleanup(ctx context.Context) error
}

// Verifier is implemented by adapters with a native cart confirmation check.
type Verifier interface {
	VerifyCart(ctx context.Context, offer *models.Offer) (bool, error)
}

// Compensator is implemented by adapters with a native cart removal action.
type Compensator interface {
	RemoveFromCart(ctx context.Context, offer *models.Offer) error
}

// CartViewer exposes the platform cart as parsed entries. Adapters without a
// native Verifier or Compensator still support commit verification through
// this view: reload the cart, match the entry, drive its remove control.
type CartViewer interface {
	CartEntries(ctx context.Context) ([]CartEntry, error)
	RemoveEntry(ctx context.Context, entry CartEntry) error
}

// CartEntry is one line of a platform cart.
type CartEntry struct {
	Name      string
	PriceText string
	RemoveRef string
}

// Options configures an adapter and its underlying session.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	CacheTTL  time.Duration
	CacheSize int

	// Transport overrides the session's HTTP transport. Used by tests.
	Transport http.RoundTripper
}
