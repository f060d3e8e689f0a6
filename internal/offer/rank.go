package offer

import "sort"

// Ranked pairs an offer with its totals under the selection used for ranking.
type Ranked struct {
	Offer  Offer
	Totals Totals
}

// Rank orders offers by their current fixed total, cheapest first. Offers
// with equal totals keep their input order.
func Rank(offers []Offer, sel Selector) []Ranked {
	out := make([]Ranked, len(offers))
	for i, o := range offers {
		out[i] = Ranked{Offer: o, Totals: ComputeTotals(o, sel)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Totals.FixedTotal < out[j].Totals.FixedTotal
	})
	return out
}
