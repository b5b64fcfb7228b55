package hunt

import (
	"context"
	"time"

	"github.com/dealhound/dealhound/models"
	"github.com/dealhound/dealhound/platform"
)

// fakeAdapter scripts one platform's behavior. It implements only the base
// Adapter capability; the verifying and viewing variants layer the optional
// capabilities on top.
type fakeAdapter struct {
	name        string
	initErr     error
	offers      []*models.Offer
	searchErr   error
	searchDelay time.Duration

	addCalls  int
	addTokens []string
	addErrs   []error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Initialize(context.Context) error { return f.initErr }

func (f *fakeAdapter) Search(ctx context.Context, _ models.Criteria) ([]*models.Offer, error) {
	if f.searchDelay > 0 {
		time.Sleep(f.searchDelay)
	}
	return f.offers, f.searchErr
}

func (f *fakeAdapter) AddToCart(_ context.Context, _ *models.Offer, token string) error {
	f.addCalls++
	f.addTokens = append(f.addTokens, token)
	if len(f.addErrs) >= f.addCalls {
		return f.addErrs[f.addCalls-1]
	}
	return nil
}

func (f *fakeAdapter) Cleanup(context.Context) error { return nil }

// verifyingAdapter has native verify and compensate.
type verifyingAdapter struct {
	fakeAdapter

	verifyCalls   int
	verifyOKAfter int
	verifyErr     error

	removeCalls int
	removeErr   error
}

func (f *verifyingAdapter) VerifyCart(context.Context, *models.Offer) (bool, error) {
	f.verifyCalls++
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return f.verifyOKAfter > 0 && f.verifyCalls >= f.verifyOKAfter, nil
}

func (f *verifyingAdapter) RemoveFromCart(context.Context, *models.Offer) error {
	f.removeCalls++
	return f.removeErr
}

// viewingAdapter exposes only the cart view, forcing the generic verify and
// compensate fallbacks.
type viewingAdapter struct {
	fakeAdapter

	entries     []platform.CartEntry
	entriesErr  error
	viewCalls   int
	removedRefs []string
}

func (f *viewingAdapter) CartEntries(context.Context) ([]platform.CartEntry, error) {
	f.viewCalls++
	return f.entries, f.entriesErr
}

func (f *viewingAdapter) RemoveEntry(_ context.Context, entry platform.CartEntry) error {
	f.removedRefs = append(f.removedRefs, entry.RemoveRef)
	for i, e := range f.entries {
		if e.RemoveRef == entry.RemoveRef {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			break
		}
	}
	return nil
}

func offer(platformName, restaurant, item string, final float64) *models.Offer {
	return &models.Offer{
		Platform:   platformName,
		Restaurant: restaurant,
		ItemName:   item,
		Price:      models.Float(final),
		FinalPrice: models.Float(final),
		CapturedAt: time.Unix(0, 0),
	}
}

func discountedOffer(platformName, restaurant, item string, price, final float64) *models.Offer {
	o := offer(platformName, restaurant, item, final)
	o.Price = models.Float(price)
	return o
}
