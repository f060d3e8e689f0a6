package checkout

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/backend-tix/internal/offer"
)

var (
	// ErrNoSelection is returned when every variant of the offer is deselected.
	ErrNoSelection = errors.New("checkout: no variant selected")
	// ErrNoPaymentTarget is returned when no destination can be resolved.
	ErrNoPaymentTarget = errors.New("checkout: no payment target")
)

// Mode selects how the handoff identifies what is being bought.
type Mode string

const (
	// ModePaymentLink hands off the offer's pre-issued payment link.
	ModePaymentLink Mode = "payment_link"
	// ModeHolderNames hands off the selected variant ids to the holder-name page.
	ModeHolderNames Mode = "holder_names"
)

// ParseMode validates a configured mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePaymentLink, "":
		return ModePaymentLink, nil
	case ModeHolderNames:
		return ModeHolderNames, nil
	default:
		return "", errors.New("checkout: unknown mode " + strconv.Quote(s))
	}
}

// Warning is a non-fatal condition the caller should display.
type Warning string

const (
	WarningNotPurchasable Warning = "not_purchasable"
	WarningExpired        Warning = "expired"
)

// Destination kinds.
const (
	DestinationExternal = "external"
	DestinationPayPage  = "pay_page"
)

// Destination is where the caller navigates after the handoff.
type Destination struct {
	Kind   string            `json:"kind"`
	URL    string            `json:"url"`
	Params map[string]string `json:"params,omitempty"`
}

// Payload is the checkout handoff for one offer.
type Payload struct {
	OfferID            string      `json:"offerId"`
	Quantity           int         `json:"quantity"`
	FixedTotal         int64       `json:"fixedTotal"`
	PaymentReference   string      `json:"paymentReference,omitempty"`
	SelectedVariantIDs []string    `json:"selectedVariantIds,omitempty"`
	Destination        Destination `json:"destination"`
	Warnings           []Warning   `json:"warnings,omitempty"`
}

// Builder constructs handoff payloads. It has no side effects.
type Builder struct {
	Mode Mode
	// PayPath is the holder-name page path; "{slug}" is replaced by the event slug.
	PayPath string
	Now     func() time.Time
}

func (b Builder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Build validates the selection on o and returns the handoff payload.
func (b Builder) Build(eventSlug string, o offer.Offer, sel offer.Selector) (Payload, error) {
	totals := offer.ComputeTotals(o, sel)
	if totals.SelectedQuantity < 1 {
		return Payload{}, ErrNoSelection
	}
	p := Payload{
		OfferID:    o.ID,
		Quantity:   totals.SelectedQuantity,
		FixedTotal: totals.FixedTotal,
	}
	if !o.IsPurchasable {
		p.Warnings = append(p.Warnings, WarningNotPurchasable)
	}
	if offer.CheckExpiry(o, b.now()) != nil {
		p.Warnings = append(p.Warnings, WarningExpired)
	}

	qty := strconv.Itoa(p.Quantity)
	switch b.Mode {
	case ModeHolderNames:
		if eventSlug == "" {
			return Payload{}, ErrNoPaymentTarget
		}
		p.SelectedVariantIDs = totals.SelectedIDs()
		p.Destination = b.payPage(eventSlug, map[string]string{
			"qty":   qty,
			"items": strings.Join(p.SelectedVariantIDs, ","),
		})
	default:
		link := strings.TrimSpace(o.PaymentLink)
		if link == "" {
			return Payload{}, ErrNoPaymentTarget
		}
		p.PaymentReference = link
		if isExternal(link) {
			p.Destination = Destination{Kind: DestinationExternal, URL: link}
		} else {
			if eventSlug == "" {
				return Payload{}, ErrNoPaymentTarget
			}
			p.Destination = b.payPage(eventSlug, map[string]string{
				"qty":         qty,
				"paymentLink": link,
			})
		}
	}
	return p, nil
}

func (b Builder) payPage(slug string, params map[string]string) Destination {
	path := b.PayPath
	if path == "" {
		path = "/tickets/all/{slug}/pay"
	}
	path = strings.ReplaceAll(path, "{slug}", url.PathEscape(slug))
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return Destination{Kind: DestinationPayPage, URL: path + "?" + q.Encode(), Params: params}
}

func isExternal(link string) bool {
	lower := strings.ToLower(link)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
