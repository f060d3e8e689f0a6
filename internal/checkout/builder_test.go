package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tix/internal/offer"
)

type selectAll struct{ except map[string]bool }

func (s selectAll) Included(_, variantID string) bool { return !s.except[variantID] }

func pairOffer(link string) offer.Offer {
	return offer.Offer{
		ID: "o-1", IsPurchasable: true, ServiceFeePerTicket: 500, PaymentLink: link,
		Variants: []offer.Variant{
			{ID: "v-1", BasePrice: 5000},
			{ID: "v-2", BasePrice: 7000},
		},
	}
}

func TestBuildNoSelection(t *testing.T) {
	b := Builder{Mode: ModePaymentLink}
	p, err := b.Build("ev", pairOffer("https://pay.example/x"), selectAll{except: map[string]bool{"v-1": true, "v-2": true}})
	require.ErrorIs(t, err, ErrNoSelection)
	require.Equal(t, Payload{}, p)
}

func TestBuildExternalPaymentLink(t *testing.T) {
	b := Builder{Mode: ModePaymentLink}
	p, err := b.Build("ev", pairOffer(" https://pay.example/abc "), selectAll{except: map[string]bool{"v-2": true}})
	require.NoError(t, err)
	require.Equal(t, 1, p.Quantity)
	require.Equal(t, int64(5500), p.FixedTotal)
	require.Equal(t, "https://pay.example/abc", p.PaymentReference)
	require.Equal(t, DestinationExternal, p.Destination.Kind)
	require.Equal(t, "https://pay.example/abc", p.Destination.URL)
	require.Empty(t, p.SelectedVariantIDs)
	require.Empty(t, p.Warnings)
}

func TestBuildInternalPaymentLinkGoesToPayPage(t *testing.T) {
	b := Builder{Mode: ModePaymentLink}
	p, err := b.Build("vasco", pairOffer("REF-123"), nil)
	require.NoError(t, err)
	require.Equal(t, DestinationPayPage, p.Destination.Kind)
	require.Equal(t, "/tickets/all/vasco/pay?paymentLink=REF-123&qty=2", p.Destination.URL)
	require.Equal(t, "2", p.Destination.Params["qty"])
}

func TestBuildMissingPaymentLink(t *testing.T) {
	b := Builder{Mode: ModePaymentLink}
	_, err := b.Build("ev", pairOffer("   "), nil)
	require.ErrorIs(t, err, ErrNoPaymentTarget)
}

func TestBuildHolderNames(t *testing.T) {
	b := Builder{Mode: ModeHolderNames, PayPath: "/events/{slug}/holders"}
	p, err := b.Build("vasco", pairOffer(""), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"v-1", "v-2"}, p.SelectedVariantIDs)
	require.Empty(t, p.PaymentReference)
	require.Equal(t, "/events/vasco/holders?items=v-1%2Cv-2&qty=2", p.Destination.URL)

	_, err = b.Build("", pairOffer(""), nil)
	require.ErrorIs(t, err, ErrNoPaymentTarget)
}

func TestBuildWarnsWithoutBlocking(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	o := pairOffer("https://pay.example/abc")
	o.IsPurchasable = false
	o.ExpiresAt = &past

	b := Builder{Mode: ModePaymentLink, Now: func() time.Time { return now }}
	p, err := b.Build("ev", o, nil)
	require.NoError(t, err)
	require.Equal(t, []Warning{WarningNotPurchasable, WarningExpired}, p.Warnings)
	require.Equal(t, int64(13000), p.FixedTotal)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModePaymentLink, m)
	m, err = ParseMode("HOLDER_NAMES")
	require.NoError(t, err)
	require.Equal(t, ModeHolderNames, m)
	_, err = ParseMode("cash")
	require.Error(t, err)
}
