package offer

import "github.com/noah-isme/backend-tix/internal/pricing"

// ClampQuantity bounds a requested ticket count to 1..MaxVariants.
func ClampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxVariants:
		return MaxVariants
	default:
		return q
	}
}

// SyntheticVariant builds one variant from a per-ticket price and a ticket
// count. A quantity-only listing becomes exactly one such variant.
func SyntheticVariant(row, seats string, pricePerTicket pricing.Money, quantity int) Variant {
	return Variant{
		Row:        row,
		SeatNumber: seats,
		BasePrice:  pricePerTicket,
		Quantity:   ClampQuantity(quantity),
	}
}
