package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeAppliesFeePerTicket(t *testing.T) {
	got := Compute([]Line{
		{Qty: 2, UnitPrice: 5000},
		{Qty: 1, UnitPrice: 2000},
	}, 1000)

	require.Equal(t, 3, got.Quantity)
	require.Equal(t, Money(12000), got.Subtotal)
	require.Equal(t, Money(3000), got.FeeTotal)
	require.Equal(t, Money(15000), got.FixedTotal)
}

func TestComputeIgnoresEmptyLines(t *testing.T) {
	got := Compute([]Line{{Qty: 0, UnitPrice: 9000}, {Qty: -1, UnitPrice: 100}}, 250)
	if got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}

func TestComputeClampsNegativeFee(t *testing.T) {
	got := Compute([]Line{{Qty: 1, UnitPrice: 100}}, -50)
	require.Equal(t, Money(100), got.FixedTotal)
	require.Zero(t, got.FeeTotal)
}

func TestFromMajorRoundsToCents(t *testing.T) {
	cases := map[float64]Money{
		0:      0,
		12.5:   1250,
		0.1:    10,
		19.999: 2000,
		1.005:  101,
		2.675:  268,
		0.015:  2,
	}
	for in, want := range cases {
		got, err := FromMajor(in)
		require.NoError(t, err, "input %v", in)
		require.Equal(t, want, got, "input %v", in)
	}
}

func TestFromMajorRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.01} {
		_, err := FromMajor(v)
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestFormatterRendersCurrency(t *testing.T) {
	f, err := NewFormatter("EUR", "it-IT")
	require.NoError(t, err)
	require.Equal(t, "EUR", f.Currency())

	out := f.Format(13000)
	require.Contains(t, out, "€")
	require.Contains(t, out, "130")
}

func TestNewFormatterRejectsUnknownCurrency(t *testing.T) {
	_, err := NewFormatter("XYZW", "en")
	require.Error(t, err)
}
