package offer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tix/internal/pricing"
)

type excluded map[string]bool

func (e excluded) Included(offerID, variantID string) bool {
	return !e[offerID+"/"+variantID]
}

func twoSeatOffer() Offer {
	return Offer{
		ID:                  "o-1",
		TicketType:          "Parterre",
		ServiceFeePerTicket: 500,
		IsPurchasable:       true,
		Status:              StatusAvailable,
		Variants: []Variant{
			{ID: "v-1", OfferID: "o-1", BasePrice: 5000},
			{ID: "v-2", OfferID: "o-1", BasePrice: 7000},
		},
	}
}

func TestComputeTotalsAllSelected(t *testing.T) {
	got := ComputeTotals(twoSeatOffer(), nil)

	require.Equal(t, 2, got.SelectedQuantity)
	require.Equal(t, pricing.Money(12000), got.Subtotal)
	require.Equal(t, pricing.Money(1000), got.FeeTotal)
	require.Equal(t, pricing.Money(13000), got.FixedTotal)
	require.Equal(t, []string{"v-1", "v-2"}, got.SelectedIDs())
}

func TestComputeTotalsDeselectedVariant(t *testing.T) {
	got := ComputeTotals(twoSeatOffer(), excluded{"o-1/v-2": true})

	require.Equal(t, 1, got.SelectedQuantity)
	require.Equal(t, pricing.Money(5000), got.Subtotal)
	require.Equal(t, pricing.Money(500), got.FeeTotal)
	require.Equal(t, pricing.Money(5500), got.FixedTotal)
}

func TestComputeTotalsNothingSelected(t *testing.T) {
	got := ComputeTotals(twoSeatOffer(), excluded{"o-1/v-1": true, "o-1/v-2": true})
	require.Zero(t, got.SelectedQuantity)
	require.Zero(t, got.FixedTotal)
	require.Empty(t, got.SelectedVariants)
}

func TestComputeTotalsFeeScalesWithQuantity(t *testing.T) {
	o := Offer{ID: "o", ServiceFeePerTicket: 250, Variants: []Variant{
		{ID: "a", BasePrice: 1999, Quantity: 3},
		{ID: "b", BasePrice: 1},
	}}
	got := ComputeTotals(o, nil)
	require.Equal(t, 4, got.SelectedQuantity)
	require.Equal(t, pricing.Money(3*1999+1), got.Subtotal)
	require.Equal(t, pricing.Money(1000), got.FeeTotal)
	require.Equal(t, got.Subtotal+got.FeeTotal, got.FixedTotal)
}

func TestRankReordersOnDeselection(t *testing.T) {
	mid := Offer{ID: "mid", Variants: []Variant{{ID: "m", BasePrice: 10000}}}
	offers := []Offer{mid, twoSeatOffer()}

	ranked := Rank(offers, nil)
	require.Equal(t, "mid", ranked[0].Offer.ID)
	require.Equal(t, "o-1", ranked[1].Offer.ID)

	ranked = Rank(offers, excluded{"o-1/v-2": true})
	require.Equal(t, "o-1", ranked[0].Offer.ID)
	require.Equal(t, pricing.Money(5500), ranked[0].Totals.FixedTotal)
	require.Equal(t, "mid", ranked[1].Offer.ID)
}

func TestRankIsStable(t *testing.T) {
	offers := []Offer{
		{ID: "a", Variants: []Variant{{ID: "1", BasePrice: 300}}},
		{ID: "b", Variants: []Variant{{ID: "2", BasePrice: 100}}},
		{ID: "c", Variants: []Variant{{ID: "3", BasePrice: 300}}},
		{ID: "d", Variants: []Variant{{ID: "4", BasePrice: 300}}},
	}
	ranked := Rank(offers, nil)
	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.Offer.ID)
	}
	require.Equal(t, []string{"b", "a", "c", "d"}, ids)
}

func TestMinPriceSkipsOffersWithoutVariants(t *testing.T) {
	offers := []Offer{
		{ID: "empty"},
		twoSeatOffer(),
		{ID: "cheap", ServiceFeePerTicket: 100, Variants: []Variant{{ID: "x", BasePrice: 900}}},
	}
	got, ok := MinPrice(offers)
	require.True(t, ok)
	require.Equal(t, pricing.Money(1000), got)

	_, ok = MinPrice([]Offer{{ID: "empty"}})
	require.False(t, ok)
}

func TestTimeRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	in26h := now.Add(26 * time.Hour)
	got, ok := TimeRemaining(&in26h, now)
	require.True(t, ok)
	require.Equal(t, "1 days, 2:00 hours", got)

	truncated := now.Add(3*time.Hour + 59*time.Minute)
	got, _ = TimeRemaining(&truncated, now)
	require.Equal(t, "0 days, 3:00 hours", got)

	past := now.Add(-time.Minute)
	got, ok = TimeRemaining(&past, now)
	require.True(t, ok)
	require.Equal(t, Expired, got)

	got, _ = TimeRemaining(&now, now)
	require.Equal(t, Expired, got)

	_, ok = TimeRemaining(nil, now)
	require.False(t, ok)
}

func TestCheckExpiry(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	o := twoSeatOffer()
	require.NoError(t, CheckExpiry(o, now))
	o.ExpiresAt = &past
	require.ErrorIs(t, CheckExpiry(o, now), ErrExpiredOffer)
}

func TestSyntheticVariantClampsQuantity(t *testing.T) {
	require.Equal(t, 1, SyntheticVariant("", "", 100, 0).Quantity)
	require.Equal(t, 4, SyntheticVariant("", "", 100, 9).Quantity)

	v := SyntheticVariant("F", "10-12", 4500, 3)
	o := Offer{ID: "q", ServiceFeePerTicket: 200, Variants: []Variant{v}}
	require.Equal(t, pricing.Money(3*4500+3*200), ComputeTotals(o, nil).FixedTotal)
}

func TestFingerprintTracksCollectionIdentity(t *testing.T) {
	a := []Offer{twoSeatOffer()}
	b := []Offer{twoSeatOffer()}
	require.Equal(t, Fingerprint(a), Fingerprint(b))

	b[0].Variants = b[0].Variants[:1]
	require.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestAvailableOffers(t *testing.T) {
	e := Event{Offers: []Offer{
		{ID: "1", Status: StatusAvailable},
		{ID: "2", Status: StatusExpired},
		{ID: "3", Status: StatusAvailable},
	}}
	got := e.AvailableOffers()
	require.Len(t, got, 2)
	require.Equal(t, "3", got[1].ID)
}
