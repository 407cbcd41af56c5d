package model

import "time"

// FulfillmentRecord is the row persisted to the ticket_details table:
// the full PaymentFact plus the minted ticket id and purchase timestamp.
type FulfillmentRecord struct {
	PaymentID   string    `db:"payment_id"`
	OrderID     string    `db:"order_id"`
	Name        string    `db:"name"`
	Email       string    `db:"email"`
	Phone       string    `db:"phone_number"`
	Item        string    `db:"item_purchased"`
	Amount      float64   `db:"amount_paid"`
	PurchasedAt time.Time `db:"purchase_date"`
	TicketID    string    `db:"ticket_id"`
}

// FulfillmentOutcome reports what happened to one event. Partial success
// (row saved but mail failed, or the reverse) is a valid terminal state.
type FulfillmentOutcome struct {
	TicketID  string
	EmailSent bool
	DBSaved   bool
	Duplicate bool // redelivered payment id, no new ticket was minted
}
