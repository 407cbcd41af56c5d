package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/qtix/ticket-gateway/internal/model"
)

// TicketsRepository persists fulfillment records and answers the duplicate
// check by external payment id.
type TicketsRepository interface {
	Insert(ctx context.Context, rec model.FulfillmentRecord) error
	GetByPaymentID(ctx context.Context, paymentID string) (*model.FulfillmentRecord, error)
}

type TicketsRepositoryImpl struct {
	db *sqlx.DB
}

func NewTicketsRepository(db *sqlx.DB) *TicketsRepositoryImpl {
	return &TicketsRepositoryImpl{db: db}
}

var _ TicketsRepository = (*TicketsRepositoryImpl)(nil)

// Insert writes one fulfillment row. The UNIQUE keys on payment_id and
// ticket_id are the durable backstop against duplicate issuance.
func (r *TicketsRepositoryImpl) Insert(ctx context.Context, rec model.FulfillmentRecord) error {
	const q = `
		INSERT INTO ticket_details
		    (payment_id, order_id, name, email, phone_number, item_purchased, amount_paid, purchase_date, ticket_id)
		VALUES
		    (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, q,
		rec.PaymentID, rec.OrderID, rec.Name, rec.Email, rec.Phone,
		rec.Item, rec.Amount, rec.PurchasedAt, rec.TicketID,
	)
	return err
}

// GetByPaymentID returns the previously issued record for a payment id,
// or (nil, nil) when none exists.
func (r *TicketsRepositoryImpl) GetByPaymentID(ctx context.Context, paymentID string) (*model.FulfillmentRecord, error) {
	var rec model.FulfillmentRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT payment_id, order_id, name, email, phone_number, item_purchased, amount_paid, purchase_date, ticket_id
		  FROM ticket_details
		 WHERE payment_id = ? LIMIT 1
	`, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
