// Package offer holds the event/offer/variant model and the pure pricing
// rules applied to it: totals under a selection, ranking, minimum price
// summaries and time remaining until expiry.
package offer

import (
	"errors"
	"time"

	"github.com/noah-isme/backend-tix/internal/pricing"
)

// Status is the lifecycle state of an offer. Only available offers are shown.
type Status string

const (
	StatusAvailable Status = "available"
	StatusExpired   Status = "expired"
	StatusWithdrawn Status = "withdrawn"
)

var (
	// ErrEventNotFound is returned when no event matches the id or slug.
	ErrEventNotFound = errors.New("offer: event not found")
	// ErrOfferNotFound is returned when an offer is not part of the loaded set.
	ErrOfferNotFound = errors.New("offer: offer not found")
	// ErrSlugTaken is returned when another event already uses the slug.
	ErrSlugTaken = errors.New("offer: event slug already in use")
)

// MaxVariants bounds the number of seats grouped under one offer.
const MaxVariants = 4

// Event owns its offers; offers own their variants.
type Event struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue"`
	City        string    `json:"city"`
	Date        time.Time `json:"date"`
	CoverImage  string    `json:"coverImage,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Offers      []Offer   `json:"offers"`
}

// Offer is a resale listing of one to four seats sharing a fee and delivery policy.
type Offer struct {
	ID                  string        `json:"id"`
	EventID             string        `json:"eventId"`
	TicketType          string        `json:"ticketType"`
	Description         string        `json:"description,omitempty"`
	DeliveryMethod      string        `json:"deliveryMethod"`
	ServiceFeePerTicket pricing.Money `json:"serviceFeePerTicket"`
	IsPurchasable       bool          `json:"isPurchasable"`
	ExpiresAt           *time.Time    `json:"expiresAt,omitempty"`
	Status              Status        `json:"status"`
	PaymentLink         string        `json:"paymentLink,omitempty"`
	Variants            []Variant     `json:"variants"`
}

// Variant is a single seat (or a block of identical seats) within an offer.
type Variant struct {
	ID         string        `json:"id"`
	OfferID    string        `json:"offerId"`
	Row        string        `json:"row,omitempty"`
	SeatNumber string        `json:"seatNumber,omitempty"`
	BasePrice  pricing.Money `json:"basePrice"`
	Quantity   int           `json:"quantity"`
}

// Qty returns the variant quantity, defaulting to a single ticket.
func (v Variant) Qty() int {
	if v.Quantity <= 0 {
		return 1
	}
	return v.Quantity
}

// Available reports whether the offer may be shown to shoppers.
func (o Offer) Available() bool {
	return o.Status == StatusAvailable
}

// AvailableOffers returns the offers of e that are shown to shoppers,
// preserving their order.
func (e Event) AvailableOffers() []Offer {
	out := make([]Offer, 0, len(e.Offers))
	for _, o := range e.Offers {
		if o.Available() {
			out = append(out, o)
		}
	}
	return out
}

// FindOffer returns the offer with id from offers.
func FindOffer(offers []Offer, id string) (Offer, error) {
	for _, o := range offers {
		if o.ID == id {
			return o, nil
		}
	}
	return Offer{}, ErrOfferNotFound
}
