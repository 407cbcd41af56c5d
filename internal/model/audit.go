package model

import "time"

// AuditEvent is one entry in the webhook processing trail.
type AuditEvent struct {
	ID        string    `db:"id" json:"id"`
	Stage     string    `db:"stage" json:"stage"` // issued|duplicate|ignored|failed
	PaymentID string    `db:"payment_id" json:"payment_id"`
	TicketID  string    `db:"ticket_id" json:"ticket_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
