// Package ticket derives human-readable ticket identifiers from payment
// events.
package ticket

import (
	"fmt"
	"time"
)

// NewID builds a ticket identifier of the form
// TKT-<YYYYMMDD>-<last 8 characters of paymentID>.
//
// The date is always taken in UTC so ids do not depend on the host's wall
// clock timezone. Ids are not globally unique by construction (two payment
// ids sharing a trailing suffix on the same day would collide); the unique
// key on ticket_details is the backstop.
func NewID(issuedAt time.Time, paymentID string) string {
	suffix := paymentID
	if n := len(paymentID); n > 8 {
		suffix = paymentID[n-8:]
	}

	return fmt.Sprintf("TKT-%s-%s", issuedAt.UTC().Format("20060102"), suffix)
}
