package selection

import (
	"time"

	"github.com/noah-isme/backend-tix/internal/offer"
	"github.com/noah-isme/backend-tix/internal/pricing"
)

// Board is the ranked, priced render list of an event's offers.
type Board struct {
	SessionID string      `json:"sessionId"`
	Event     EventHeader `json:"event"`
	Currency  string      `json:"currency"`
	Offers    []OfferView `json:"offers"`
}

// EventHeader is the event summary shown above the board.
type EventHeader struct {
	ID    string    `json:"id"`
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	Venue string    `json:"venue"`
	City  string    `json:"city"`
	Date  time.Time `json:"date"`
}

// OfferView is one ranked offer with its totals under the session selection.
type OfferView struct {
	ID                  string        `json:"id"`
	TicketType          string        `json:"ticketType"`
	Description         string        `json:"description,omitempty"`
	DeliveryMethod      string        `json:"deliveryMethod"`
	ServiceFeePerTicket pricing.Money `json:"serviceFeePerTicket"`
	IsPurchasable       bool          `json:"isPurchasable"`
	NotPurchasable      bool          `json:"notPurchasable"`
	ExpiresAt           *time.Time    `json:"expiresAt,omitempty"`
	TimeRemaining       *string       `json:"timeRemaining"`
	Expired             bool          `json:"expired"`
	SelectedQuantity    int           `json:"selectedQuantity"`
	Subtotal            pricing.Money `json:"subtotal"`
	FeeTotal            pricing.Money `json:"feeTotal"`
	FixedTotal          pricing.Money `json:"fixedTotal"`
	Display             TotalsDisplay `json:"display"`
	VATIncluded         bool          `json:"vatIncluded"`
	Variants            []VariantView `json:"variants"`
}

// TotalsDisplay carries the formatted amounts of an offer.
type TotalsDisplay struct {
	Subtotal   string `json:"subtotal"`
	FeeTotal   string `json:"feeTotal"`
	FixedTotal string `json:"fixedTotal"`
}

// VariantView is a seat with its inclusion flag.
type VariantView struct {
	ID         string        `json:"id"`
	Row        string        `json:"row,omitempty"`
	SeatNumber string        `json:"seatNumber,omitempty"`
	BasePrice  pricing.Money `json:"basePrice"`
	Price      string        `json:"price"`
	Quantity   int           `json:"quantity"`
	Included   bool          `json:"included"`
}

func (s *Service) render(ev offer.Event, offers []offer.Offer, sess Session) Board {
	now := s.now()
	ranked := offer.Rank(offers, sess.State)
	views := make([]OfferView, 0, len(ranked))
	for _, r := range ranked {
		views = append(views, s.offerView(r, sess.State, now))
	}
	return Board{
		SessionID: sess.ID,
		Event: EventHeader{
			ID:    ev.ID,
			Slug:  ev.Slug,
			Title: ev.Title,
			Venue: ev.Venue,
			City:  ev.City,
			Date:  ev.Date,
		},
		Currency: s.Formatter.Currency(),
		Offers:   views,
	}
}

func (s *Service) offerView(r offer.Ranked, st State, now time.Time) OfferView {
	o, t := r.Offer, r.Totals
	view := OfferView{
		ID:                  o.ID,
		TicketType:          o.TicketType,
		Description:         o.Description,
		DeliveryMethod:      o.DeliveryMethod,
		ServiceFeePerTicket: o.ServiceFeePerTicket,
		IsPurchasable:       o.IsPurchasable,
		NotPurchasable:      !o.IsPurchasable,
		ExpiresAt:           o.ExpiresAt,
		Expired:             offer.IsExpired(o, now),
		SelectedQuantity:    t.SelectedQuantity,
		Subtotal:            t.Subtotal,
		FeeTotal:            t.FeeTotal,
		FixedTotal:          t.FixedTotal,
		Display: TotalsDisplay{
			Subtotal:   s.Formatter.Format(t.Subtotal),
			FeeTotal:   s.Formatter.Format(t.FeeTotal),
			FixedTotal: s.Formatter.Format(t.FixedTotal),
		},
		VATIncluded: true,
		Variants:    make([]VariantView, 0, len(o.Variants)),
	}
	if remaining, ok := offer.TimeRemaining(o.ExpiresAt, now); ok {
		view.TimeRemaining = &remaining
	}
	for _, v := range o.Variants {
		view.Variants = append(view.Variants, VariantView{
			ID:         v.ID,
			Row:        v.Row,
			SeatNumber: v.SeatNumber,
			BasePrice:  v.BasePrice,
			Price:      s.Formatter.Format(v.BasePrice),
			Quantity:   v.Qty(),
			Included:   st.Included(o.ID, v.ID),
		})
	}
	return view
}
