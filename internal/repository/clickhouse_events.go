package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/qtix/ticket-gateway/internal/model"
)

// EventsRepository stores the webhook processing trail in ClickHouse for
// the operational read path.
type EventsRepository interface {
	Insert(ctx context.Context, ev model.AuditEvent) error
	Recent(ctx context.Context, limit, offset int) ([]model.AuditEvent, error)
}

type chEventsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewEventsRepository(ch *sqlx.DB) EventsRepository {
	return &chEventsRepository{ch: ch}
}

func (r *chEventsRepository) Insert(ctx context.Context, ev model.AuditEvent) error {
	const q = `
		INSERT INTO tixgw.webhook_events
		    (id, stage, payment_id, ticket_id, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.ch.ExecContext(ctx, q,
		ev.ID, ev.Stage, ev.PaymentID, ev.TicketID, ev.Message, ev.CreatedAt,
	)
	return err
}

func (r *chEventsRepository) Recent(ctx context.Context, limit, offset int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `
		SELECT id, stage, payment_id, ticket_id, message, created_at
		FROM tixgw.webhook_events
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	var rows []model.AuditEvent
	if err := r.ch.SelectContext(ctx, &rows, q, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}
