package offer

import (
	"errors"
	"fmt"
	"time"
)

// Expired is the literal returned by TimeRemaining once the deadline passed.
const Expired = "expired"

// ErrExpiredOffer marks an offer past its expiry. It is informational: callers
// decide whether to block on it.
var ErrExpiredOffer = errors.New("offer: expired")

// TimeRemaining renders the time left until expiresAt as whole days plus the
// truncated hours of the current day. It returns ok=false when there is no
// expiry at all.
func TimeRemaining(expiresAt *time.Time, now time.Time) (string, bool) {
	if expiresAt == nil {
		return "", false
	}
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return Expired, true
	}
	hours := int64(diff / time.Hour)
	return fmt.Sprintf("%d days, %d:00 hours", hours/24, hours%24), true
}

// IsExpired reports whether o has an expiry at or before now.
func IsExpired(o Offer, now time.Time) bool {
	return o.ExpiresAt != nil && !o.ExpiresAt.After(now)
}

// CheckExpiry returns ErrExpiredOffer for an expired offer.
func CheckExpiry(o Offer, now time.Time) error {
	if IsExpired(o, now) {
		return ErrExpiredOffer
	}
	return nil
}
