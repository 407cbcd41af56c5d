package event

import (
	"encoding/json"
	"testing"

	"github.com/qtix/ticket-gateway/internal/model"
)

func paymentEnvelope(notes map[string]string) *model.WebhookEnvelope {
	return &model.WebhookEnvelope{
		Event: "payment.captured",
		Payload: model.WebhookPayload{
			Payment: &model.PaymentWrapper{
				Entity: &model.PaymentEntity{
					ID:      "pay_ABCDEFGH1234",
					OrderID: "order_XYZ",
					Amount:  25000,
					Email:   "buyer@example.com",
					Contact: "9876543210",
					Notes:   notes,
				},
			},
		},
	}
}

func TestExtractMatchingTarget(t *testing.T) {
	x := New("pl_target")
	fact := x.Extract(paymentEnvelope(map[string]string{
		"page_id": "pl_target",
		"name":    "Asha",
		"item":    "Early Bird Pass",
	}))
	if fact == nil {
		t.Fatal("expected a fact for a matching target")
	}
	if fact.PaymentID != "pay_ABCDEFGH1234" || fact.OrderID != "order_XYZ" {
		t.Errorf("ids not extracted: %+v", fact)
	}
	if fact.Amount != 250 {
		t.Errorf("amount = %v, want 250 (minor units / 100)", fact.Amount)
	}
	if fact.Name != "Asha" || fact.Item != "Early Bird Pass" {
		t.Errorf("notes not preferred: %+v", fact)
	}
	if fact.Contact != "+919876543210" {
		t.Errorf("contact not normalized: %q", fact.Contact)
	}
}

func TestExtractTargetMismatch(t *testing.T) {
	x := New("pl_target")
	if fact := x.Extract(paymentEnvelope(map[string]string{"page_id": "pl_other"})); fact != nil {
		t.Fatalf("expected nil for non-target event, got %+v", fact)
	}
}

func TestExtractEmptyTargetMatchesNothing(t *testing.T) {
	x := New("")
	if fact := x.Extract(paymentEnvelope(nil)); fact != nil {
		t.Fatalf("unconfigured target must ignore payments without page_id, got %+v", fact)
	}
	if fact := x.Extract(paymentEnvelope(map[string]string{"page_id": "pl_any"})); fact != nil {
		t.Fatalf("unconfigured target must ignore every payment, got %+v", fact)
	}
}

func TestExtractNoPaymentEntity(t *testing.T) {
	x := New("pl_target")
	if fact := x.Extract(&model.WebhookEnvelope{Event: "order.created"}); fact != nil {
		t.Fatalf("expected nil for envelope without payment, got %+v", fact)
	}
	if fact := x.Extract(nil); fact != nil {
		t.Fatalf("expected nil for nil envelope, got %+v", fact)
	}
}

func TestExtractDefaults(t *testing.T) {
	x := New("pl_target")
	env := paymentEnvelope(map[string]string{"page_id": "pl_target"})
	env.Payload.Payment.Entity.Email = ""
	env.Payload.Payment.Entity.Contact = ""
	fact := x.Extract(env)
	if fact == nil {
		t.Fatal("expected a fact")
	}
	if fact.Name != DefaultName {
		t.Errorf("name = %q, want default %q", fact.Name, DefaultName)
	}
	if fact.Item != DefaultItem {
		t.Errorf("item = %q, want default %q", fact.Item, DefaultItem)
	}
	if fact.Email != "" || fact.Contact != "" {
		t.Errorf("absent contact fields must default to empty: %+v", fact)
	}
}

func TestExtractNameFallsBackToCustomerName(t *testing.T) {
	x := New("pl_target")
	env := paymentEnvelope(map[string]string{"page_id": "pl_target"})
	env.Payload.Payment.Entity.CustomerName = "Ravi"
	fact := x.Extract(env)
	if fact == nil || fact.Name != "Ravi" {
		t.Fatalf("expected customer_name fallback, got %+v", fact)
	}
}

func TestEnvelopeParsesProviderJSON(t *testing.T) {
	raw := `{
	  "event": "payment.captured",
	  "payload": {"payment": {"entity": {
	    "id": "pay_X1", "order_id": "order_1", "amount": 9900,
	    "email": "a@b.c", "contact": "+919812345678",
	    "notes": {"page_id": "pl_target", "item": "Pass"}
	  }}}
	}`
	var env model.WebhookEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	fact := New("pl_target").Extract(&env)
	if fact == nil || fact.Amount != 99 || fact.Item != "Pass" {
		t.Fatalf("unexpected fact: %+v", fact)
	}
}
