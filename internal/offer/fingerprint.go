package offer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Fingerprint identifies a loaded offer collection. It changes whenever an
// offer or variant is added, removed or repriced, and is stable otherwise.
func Fingerprint(offers []Offer) string {
	h := sha256.New()
	for _, o := range offers {
		h.Write([]byte(o.ID))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatInt(o.ServiceFeePerTicket, 10)))
		for _, v := range o.Variants {
			h.Write([]byte{1})
			h.Write([]byte(v.ID))
			h.Write([]byte{0})
			h.Write([]byte(strconv.FormatInt(v.BasePrice, 10)))
			h.Write([]byte{0})
			h.Write([]byte(strconv.Itoa(v.Qty())))
		}
		h.Write([]byte{2})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
