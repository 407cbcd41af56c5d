// Package fulfillment orchestrates one verified payment event end to end:
// duplicate check, ticket id, credential, persistence, notification.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/qtix/ticket-gateway/internal/audit"
	"github.com/qtix/ticket-gateway/internal/logger"
	"github.com/qtix/ticket-gateway/internal/mailer"
	"github.com/qtix/ticket-gateway/internal/metrics"
	"github.com/qtix/ticket-gateway/internal/model"
	"github.com/qtix/ticket-gateway/internal/repository"
	"github.com/qtix/ticket-gateway/internal/ticket"
	"go.uber.org/zap"
)

// CredentialEncoder produces the QR PNG for one ticket.
type CredentialEncoder interface {
	Encode(ticketID, email string, issuedAt time.Time) ([]byte, error)
}

// Notifier delivers the confirmation email. Single attempt, best effort.
type Notifier interface {
	SendTicket(ctx context.Context, t mailer.Ticket) error
}

// Deduper is the optional cache in front of the duplicate check. FirstSeen
// reports whether paymentID has not been observed before; implementations
// fail open (return true) so the durable store stays authoritative. A
// cache answer can only prove presence — keys expire and caches restart —
// so it never replaces the durable lookup.
type Deduper interface {
	FirstSeen(ctx context.Context, paymentID string) bool
}

type Service struct {
	tickets repository.TicketsRepository
	notify  Notifier
	enc     CredentialEncoder
	trail   audit.Trail
	dedup   Deduper // optional

	mailTimeout time.Duration
	now         func() time.Time
}

func New(
	tickets repository.TicketsRepository,
	notify Notifier,
	enc CredentialEncoder,
	trail audit.Trail,
	dedup Deduper,
	mailTimeout time.Duration,
) *Service {
	if mailTimeout <= 0 {
		mailTimeout = 10 * time.Second
	}
	return &Service{
		tickets:     tickets,
		notify:      notify,
		enc:         enc,
		trail:       trail,
		dedup:       dedup,
		mailTimeout: mailTimeout,
		now:         time.Now,
	}
}

// Fulfill processes one extracted payment fact.
//
// Sequencing: duplicate check → ticket id → credential (hard failure for
// the event) → persistence attempt → notification attempt. Persistence and
// notification are independent: a failure of either is reported as false
// in the outcome and never prevents the other. Neither is retried here;
// reconciliation of a false outcome is the caller's responsibility.
func (s *Service) Fulfill(ctx context.Context, fact *model.PaymentFact) (*model.FulfillmentOutcome, error) {
	now := s.now()

	if existing := s.findExisting(ctx, fact.PaymentID); existing != nil {
		metrics.EventsTotal.WithLabelValues("duplicate").Inc()
		s.trail.Record(ctx, model.AuditEvent{
			Stage:     "duplicate",
			PaymentID: fact.PaymentID,
			TicketID:  existing.TicketID,
			Message:   "redelivered event, ticket already issued",
		})
		return &model.FulfillmentOutcome{
			TicketID:  existing.TicketID,
			DBSaved:   true,
			Duplicate: true,
		}, nil
	}

	id := ticket.NewID(now, fact.PaymentID)

	png, err := s.enc.Encode(id, fact.Email, now)
	if err != nil {
		s.trail.Record(ctx, model.AuditEvent{
			Stage:     "failed",
			PaymentID: fact.PaymentID,
			TicketID:  id,
			Message:   "credential encoding failed",
		})
		return nil, fmt.Errorf("encode credential: %w", err)
	}

	dbSaved := true
	rec := model.FulfillmentRecord{
		PaymentID:   fact.PaymentID,
		OrderID:     fact.OrderID,
		Name:        fact.Name,
		Email:       fact.Email,
		Phone:       fact.Contact,
		Item:        fact.Item,
		Amount:      fact.Amount,
		PurchasedAt: now,
		TicketID:    id,
	}
	if err := s.tickets.Insert(ctx, rec); err != nil {
		logger.Log.Error("ticket insert failed",
			zap.String("payment_id", fact.PaymentID),
			zap.String("ticket_id", id),
			zap.Error(err),
		)
		metrics.EventsTotal.WithLabelValues("db_failed").Inc()
		dbSaved = false
	}

	emailSent := true
	mctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	err = s.notify.SendTicket(mctx, mailer.Ticket{
		To:          fact.Email,
		Name:        fact.Name,
		TicketID:    id,
		Item:        fact.Item,
		Amount:      fact.Amount,
		PurchasedAt: now,
		QRPNG:       png,
	})
	if err != nil {
		logger.Log.Error("ticket email failed",
			zap.String("payment_id", fact.PaymentID),
			zap.String("ticket_id", id),
			zap.Error(err),
		)
		metrics.EventsTotal.WithLabelValues("email_failed").Inc()
		emailSent = false
	}

	// "issued" means at least one channel got the ticket out; when neither
	// did there is nothing issued to anyone and the event counts as failed.
	stage := "issued"
	if !dbSaved && !emailSent {
		stage = "failed"
	}
	metrics.EventsTotal.WithLabelValues(stage).Inc()
	s.trail.Record(ctx, model.AuditEvent{
		Stage:     stage,
		PaymentID: fact.PaymentID,
		TicketID:  id,
		Message:   fmt.Sprintf("db_saved=%t email_sent=%t", dbSaved, emailSent),
	})

	return &model.FulfillmentOutcome{
		TicketID:  id,
		EmailSent: emailSent,
		DBSaved:   dbSaved,
	}, nil
}

// findExisting answers the idempotency check for redelivered events. The
// durable lookup always runs: the cache can flag a redelivery early but a
// first-seen answer proves nothing once its key expired or the cache
// restarted. A lookup error is logged and treated as not-found so a flaky
// read cannot block issuance (availability over strictness, the unique key
// catches the rare double insert).
func (s *Service) findExisting(ctx context.Context, paymentID string) *model.FulfillmentRecord {
	if s.dedup != nil && !s.dedup.FirstSeen(ctx, paymentID) {
		logger.Log.Info("dedup cache flagged redelivery",
			zap.String("payment_id", paymentID),
		)
	}

	existing, err := s.tickets.GetByPaymentID(ctx, paymentID)
	if err != nil {
		logger.Log.Warn("duplicate lookup failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		return nil
	}
	return existing
}
