package listing

import (
	"strings"
	"time"

	"github.com/noah-isme/backend-tix/internal/offer"
)

// EventInput is the admin request to create an event with its listings.
type EventInput struct {
	Title       string         `json:"title" validate:"notblank,max=200"`
	Slug        string         `json:"slug" validate:"omitempty,max=200"`
	Description string         `json:"description"`
	Venue       string         `json:"venue" validate:"notblank"`
	City        string         `json:"city" validate:"notblank"`
	Date        time.Time      `json:"date" validate:"required"`
	CoverImage  string         `json:"coverImage" validate:"omitempty,url"`
	Listings    []ListingInput `json:"listings" validate:"dive"`
}

// ListingInput is one offer to admit. Either Items is given, or the
// quantity-only shape (PricePerTicket + Quantity) which is normalised into a
// single variant.
type ListingInput struct {
	TicketType          string      `json:"ticketType" validate:"notblank"`
	Description         string      `json:"description"`
	DeliveryMethod      string      `json:"deliveryMethod"`
	ServiceFeePerTicket *float64    `json:"serviceFeePerTicket" validate:"omitempty,price"`
	IsPurchasable       *bool       `json:"isPurchasable"`
	ExpiresAt           *time.Time  `json:"expiresAt"`
	PaymentLink         string      `json:"paymentLink" validate:"omitempty,max=2048"`
	Items               []ItemInput `json:"items" validate:"min=1,max=4,dive"`

	PricePerTicket *float64 `json:"pricePerTicket,omitempty" validate:"omitempty,price"`
	Quantity       int      `json:"quantity,omitempty"`
	Row            string   `json:"row,omitempty"`
	SeatNumbers    string   `json:"seatNumbers,omitempty"`
}

// ItemInput is one seat of a listing.
type ItemInput struct {
	Row        string   `json:"row"`
	SeatNumber string   `json:"seatNumber"`
	BasePrice  *float64 `json:"basePrice" validate:"required,price"`
	Quantity   int      `json:"quantity,omitempty" validate:"omitempty,min=1,max=4"`
}

// normalise folds the quantity-only shape into Items and trims labels.
func (l *ListingInput) normalise() {
	l.TicketType = strings.TrimSpace(l.TicketType)
	l.DeliveryMethod = strings.TrimSpace(l.DeliveryMethod)
	l.PaymentLink = strings.TrimSpace(l.PaymentLink)
	if len(l.Items) == 0 && l.PricePerTicket != nil {
		l.Items = []ItemInput{{
			Row:        l.Row,
			SeatNumber: l.SeatNumbers,
			BasePrice:  l.PricePerTicket,
			Quantity:   offer.ClampQuantity(l.Quantity),
		}}
	}
}
