package obs

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts pricing, selection and checkout outcomes.
// A nil *DomainMetrics is valid and records nothing.
type DomainMetrics struct {
	CheckoutHandoff   *prometheus.CounterVec
	ListingValidation *prometheus.CounterVec
	SelectionToggle   *prometheus.CounterVec
	OffersExpired     prometheus.Counter
}

// NewDomainMetrics registers the domain collectors on reg.
func NewDomainMetrics(namespace string, reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &DomainMetrics{
		CheckoutHandoff: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_handoff_total",
			Help:      "Checkout handoff attempts by mode and outcome.",
		}, []string{"mode", "result"})),
		ListingValidation: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_validation_total",
			Help:      "Admin listing composition checks by outcome.",
		}, []string{"result"})),
		SelectionToggle: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_toggle_total",
			Help:      "Variant inclusion toggles by outcome.",
		}, []string{"result"})),
		OffersExpired: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offers_expired_total",
			Help:      "Offers moved to the expired status by the sweeper.",
		})),
	}
}

// Checkout records a handoff outcome.
func (m *DomainMetrics) Checkout(mode, result string) {
	if m == nil {
		return
	}
	m.CheckoutHandoff.WithLabelValues(mode, result).Inc()
}

// Validation records a listing validation outcome.
func (m *DomainMetrics) Validation(result string) {
	if m == nil {
		return
	}
	m.ListingValidation.WithLabelValues(result).Inc()
}

// Toggle records a selection toggle outcome.
func (m *DomainMetrics) Toggle(result string) {
	if m == nil {
		return
	}
	m.SelectionToggle.WithLabelValues(result).Inc()
}

// Expired adds n swept offers.
func (m *DomainMetrics) Expired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.OffersExpired.Add(float64(n))
}
