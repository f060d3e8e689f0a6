package pricing

// Money represents a monetary value stored in minor units (cents).
type Money = int64

// Line describes a priced group of identical tickets.
type Line struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates computed pricing components for a selection of lines.
type Summary struct {
	Quantity   int
	Subtotal   Money
	FeeTotal   Money
	FixedTotal Money
}

// Compute sums the lines and applies a service fee once per ticket. Lines with
// a non-positive quantity are ignored.
func Compute(lines []Line, feePerTicket Money) Summary {
	var (
		qty      int
		subtotal Money
	)
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		qty += l.Qty
		subtotal += Money(l.Qty) * l.UnitPrice
	}
	if feePerTicket < 0 {
		feePerTicket = 0
	}
	fee := feePerTicket * Money(qty)
	return Summary{
		Quantity:   qty,
		Subtotal:   subtotal,
		FeeTotal:   fee,
		FixedTotal: subtotal + fee,
	}
}
