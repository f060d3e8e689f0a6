package offer

import "github.com/noah-isme/backend-tix/internal/pricing"

// Selector reports whether a variant is part of the shopper's current
// selection. A nil Selector includes every variant.
type Selector interface {
	Included(offerID, variantID string) bool
}

// Totals are the derived prices of an offer under a selection. They are
// recomputed on every call and never stored.
type Totals struct {
	SelectedQuantity int           `json:"selectedQuantity"`
	Subtotal         pricing.Money `json:"subtotal"`
	FeeTotal         pricing.Money `json:"feeTotal"`
	FixedTotal       pricing.Money `json:"fixedTotal"`
	SelectedVariants []Variant     `json:"-"`
}

// ComputeTotals sums the included variants of o and applies the per-ticket
// service fee to the selected quantity.
func ComputeTotals(o Offer, sel Selector) Totals {
	lines := make([]pricing.Line, 0, len(o.Variants))
	selected := make([]Variant, 0, len(o.Variants))
	for _, v := range o.Variants {
		if sel != nil && !sel.Included(o.ID, v.ID) {
			continue
		}
		selected = append(selected, v)
		lines = append(lines, pricing.Line{Qty: v.Qty(), UnitPrice: v.BasePrice})
	}
	sum := pricing.Compute(lines, o.ServiceFeePerTicket)
	return Totals{
		SelectedQuantity: sum.Quantity,
		Subtotal:         sum.Subtotal,
		FeeTotal:         sum.FeeTotal,
		FixedTotal:       sum.FixedTotal,
		SelectedVariants: selected,
	}
}

// SelectedIDs returns the identifiers of the included variants in offer order.
func (t Totals) SelectedIDs() []string {
	ids := make([]string, 0, len(t.SelectedVariants))
	for _, v := range t.SelectedVariants {
		ids = append(ids, v.ID)
	}
	return ids
}
