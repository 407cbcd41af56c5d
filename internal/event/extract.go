// Package event extracts normalized payment facts from provider webhook
// envelopes and filters out events that do not belong to this deployment.
package event

import (
	"github.com/qtix/ticket-gateway/internal/model"
	"github.com/qtix/ticket-gateway/internal/util"
)

// Defaults applied when optional provider fields are absent. Extraction
// never fails on a missing field.
const (
	DefaultName = "Customer"
	DefaultItem = "Ticket"
)

// Extractor filters events by the configured target page and maps the
// payment entity to a PaymentFact.
type Extractor struct {
	targetPageID string
}

func New(targetPageID string) *Extractor {
	return &Extractor{targetPageID: targetPageID}
}

// Extract returns the normalized facts of a payment event, or nil when the
// event is not applicable: it carries no payment entity, its page_id note
// does not match the configured target, or no target is configured at all.
// Not-applicable is not an error; the caller acknowledges such events with
// a 2xx so the provider does not redeliver them.
func (x *Extractor) Extract(env *model.WebhookEnvelope) *model.PaymentFact {
	if env == nil || env.Payload.Payment == nil || env.Payload.Payment.Entity == nil {
		return nil
	}
	p := env.Payload.Payment.Entity

	// No configured target means no event is ours. An empty target must not
	// pair up with payments that simply lack the page_id note.
	pageID := p.Notes["page_id"]
	if x.targetPageID == "" || pageID != x.targetPageID {
		return nil
	}

	name := p.Notes["name"]
	if name == "" {
		name = p.CustomerName
	}
	if name == "" {
		name = DefaultName
	}

	item := p.Notes["item"]
	if item == "" {
		item = DefaultItem
	}

	return &model.PaymentFact{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Name:      name,
		Email:     p.Email,
		Contact:   util.NormalizeContact(p.Contact),
		Item:      item,
		Amount:    float64(p.Amount) / 100, // paise -> rupees
		PageID:    pageID,
	}
}
