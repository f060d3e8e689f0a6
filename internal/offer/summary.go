package offer

import "github.com/noah-isme/backend-tix/internal/pricing"

// MinPrice returns the cheapest default (fully selected) fixed total across
// offers. Offers without variants have no price and are skipped; ok is false
// when no offer is priced.
func MinPrice(offers []Offer) (lowest pricing.Money, ok bool) {
	for _, o := range offers {
		if len(o.Variants) == 0 {
			continue
		}
		total := ComputeTotals(o, nil).FixedTotal
		if !ok || total < lowest {
			lowest, ok = total, true
		}
	}
	return lowest, ok
}
