package hunt

import "github.com/dealhound/dealhound/models"

// SelectBest returns the offer with the lowest known final price, or nil when
// no offer has one. Ties keep the earliest offer in input order, and since
// collected offers are concatenated in adapter registration order the winner
// is deterministic for a fixed adapter list.
func SelectBest(offers []*models.Offer) *models.Offer {
	var best *models.Offer
	for _, o := range offers {
		if o == nil || o.FinalPrice == nil {
			continue
		}
		if best == nil || *o.FinalPrice < *best.FinalPrice {
			best = o
		}
	}
	return best
}
