package hunt

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dealhound/dealhound/models"
)

// Dedupe drops offers already seen in this run. Platforms frequently render
// the same restaurant card more than once per results page, and interactive
// sessions can search the same item repeatedly.
type Dedupe struct {
	cache *lru.Cache[string, struct{}]
}

// NewDedupe builds a dedupe window holding up to size offer keys.
func NewDedupe(size int) (*Dedupe, error) {
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Dedupe{cache: cache}, nil
}

// Filter returns the offers whose key has not been seen yet, preserving
// input order. A nil Dedupe filters nothing.
func (d *Dedupe) Filter(offers []*models.Offer) []*models.Offer {
	if d == nil {
		return offers
	}
	out := offers[:0:0]
	for _, o := range offers {
		if o == nil {
			continue
		}
		if seen, _ := d.cache.ContainsOrAdd(o.Key(), struct{}{}); seen {
			continue
		}
		out = append(out, o)
	}
	return out
}
