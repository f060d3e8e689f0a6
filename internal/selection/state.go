// Package selection tracks which variants of each offer a shopper currently
// includes, and renders the ranked offer board for a selection session.
package selection

import (
	"errors"

	"github.com/noah-isme/backend-tix/internal/offer"
)

// ErrUnknownVariant is returned when toggling a variant that is not part of
// the loaded offer set.
var ErrUnknownVariant = errors.New("selection: unknown variant")

// Inclusion is the stored inclusion of one variant. Unset is treated as
// Included so a partial map still prices every variant.
type Inclusion uint8

const (
	Unset Inclusion = iota
	Included
	Excluded
)

// State maps offer id -> variant id -> inclusion for one loaded offer set.
type State struct {
	Fingerprint string                          `json:"fingerprint"`
	Offers      map[string]map[string]Inclusion `json:"offers"`
}

// Seed builds a state with every variant of offers included.
func Seed(offers []offer.Offer) State {
	st := State{
		Fingerprint: offer.Fingerprint(offers),
		Offers:      make(map[string]map[string]Inclusion, len(offers)),
	}
	for _, o := range offers {
		variants := make(map[string]Inclusion, len(o.Variants))
		for _, v := range o.Variants {
			variants[v.ID] = Included
		}
		st.Offers[o.ID] = variants
	}
	return st
}

// Lookup returns the stored inclusion of a variant, Unset when absent.
func (s State) Lookup(offerID, variantID string) Inclusion {
	return s.Offers[offerID][variantID]
}

// Included implements offer.Selector.
func (s State) Included(offerID, variantID string) bool {
	return s.Lookup(offerID, variantID) != Excluded
}

// Toggle flips the inclusion of a known variant and returns the new value.
func (s *State) Toggle(offerID, variantID string) (Inclusion, error) {
	variants, ok := s.Offers[offerID]
	if !ok {
		return Unset, ErrUnknownVariant
	}
	cur, ok := variants[variantID]
	if !ok {
		return Unset, ErrUnknownVariant
	}
	next := Excluded
	if cur == Excluded {
		next = Included
	}
	variants[variantID] = next
	return next, nil
}

// Sync re-seeds the state when offers is a different collection from the one
// it was built for. It reports whether a re-seed happened; toggles survive
// when the collection is unchanged.
func (s *State) Sync(offers []offer.Offer) bool {
	fp := offer.Fingerprint(offers)
	if s.Offers != nil && s.Fingerprint == fp {
		return false
	}
	*s = Seed(offers)
	return true
}
