package model

// WebhookEnvelope is the provider's event envelope as delivered to the
// webhook endpoint. Only the payment entity is navigated; everything else
// in the envelope is ignored.
type WebhookEnvelope struct {
	Event   string         `json:"event"`
	Payload WebhookPayload `json:"payload"`
}

type WebhookPayload struct {
	Payment *PaymentWrapper `json:"payment"`
}

type PaymentWrapper struct {
	Entity *PaymentEntity `json:"entity"`
}

// PaymentEntity is the provider-side payment object. Amount is in minor
// currency units (paise). Notes carries the checkout-time contextual tags
// (page_id, name, item).
type PaymentEntity struct {
	ID           string            `json:"id"`
	OrderID      string            `json:"order_id"`
	Amount       int64             `json:"amount"`
	Email        string            `json:"email"`
	Contact      string            `json:"contact"`
	CustomerName string            `json:"customer_name"`
	Notes        map[string]string `json:"notes"`
}
