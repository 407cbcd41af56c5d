package fulfillment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qtix/ticket-gateway/internal/audit"
	"github.com/qtix/ticket-gateway/internal/mailer"
	"github.com/qtix/ticket-gateway/internal/model"
)

type fakeTickets struct {
	existing  *model.FulfillmentRecord
	lookupErr error
	insertErr error
	inserted  []model.FulfillmentRecord
	lookups   int
}

func (f *fakeTickets) Insert(_ context.Context, rec model.FulfillmentRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeTickets) GetByPaymentID(_ context.Context, _ string) (*model.FulfillmentRecord, error) {
	f.lookups++
	return f.existing, f.lookupErr
}

type fakeNotifier struct {
	sent []mailer.Ticket
	err  error
}

func (f *fakeNotifier) SendTicket(_ context.Context, t mailer.Ticket) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, t)
	return nil
}

type fakeEncoder struct{ err error }

func (f *fakeEncoder) Encode(_, _ string, _ time.Time) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("png-bytes"), nil
}

type fakeDeduper struct{ firstSeen bool }

func (f *fakeDeduper) FirstSeen(_ context.Context, _ string) bool { return f.firstSeen }

func fact() *model.PaymentFact {
	return &model.PaymentFact{
		PaymentID: "pay_ABCDEFGH1234",
		OrderID:   "order_1",
		Name:      "Asha",
		Email:     "buyer@example.com",
		Item:      "Pass",
		Amount:    250,
	}
}

func newService(tk *fakeTickets, nt *fakeNotifier, enc *fakeEncoder, dd Deduper) *Service {
	s := New(tk, nt, enc, audit.NewMemoryTrail(16), dd, time.Second)
	s.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestFulfillHappyPath(t *testing.T) {
	tk := &fakeTickets{}
	nt := &fakeNotifier{}
	out, err := newService(tk, nt, &fakeEncoder{}, nil).Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if out.TicketID != "TKT-20240305-EFGH1234" {
		t.Errorf("ticket id = %q", out.TicketID)
	}
	if !out.DBSaved || !out.EmailSent || out.Duplicate {
		t.Errorf("outcome = %+v", out)
	}
	if len(tk.inserted) != 1 {
		t.Fatalf("inserted %d rows, want 1", len(tk.inserted))
	}
	if tk.inserted[0].TicketID != out.TicketID || tk.inserted[0].PaymentID != "pay_ABCDEFGH1234" {
		t.Errorf("record = %+v", tk.inserted[0])
	}
	if len(nt.sent) != 1 || nt.sent[0].To != "buyer@example.com" || len(nt.sent[0].QRPNG) == 0 {
		t.Errorf("mail = %+v", nt.sent)
	}
}

func TestFulfillMailFailureDoesNotAffectPersistence(t *testing.T) {
	tk := &fakeTickets{}
	nt := &fakeNotifier{err: errors.New("smtp down")}
	out, err := newService(tk, nt, &fakeEncoder{}, nil).Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("mail failure must not be an error: %v", err)
	}
	if !out.DBSaved {
		t.Error("db_saved must reflect the insert's own outcome")
	}
	if out.EmailSent {
		t.Error("email_sent must be false")
	}
	if len(tk.inserted) != 1 {
		t.Fatal("persistence attempt must still happen")
	}
}

func TestFulfillPersistenceFailureDoesNotAffectMail(t *testing.T) {
	tk := &fakeTickets{insertErr: errors.New("db down")}
	nt := &fakeNotifier{}
	out, err := newService(tk, nt, &fakeEncoder{}, nil).Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("db failure must not be an error: %v", err)
	}
	if out.DBSaved {
		t.Error("db_saved must be false")
	}
	if !out.EmailSent {
		t.Error("email_sent must reflect the send's own outcome")
	}
	if len(nt.sent) != 1 {
		t.Fatal("notification attempt must still happen")
	}
}

func TestFulfillCredentialFailureIsFatal(t *testing.T) {
	tk := &fakeTickets{}
	nt := &fakeNotifier{}
	_, err := newService(tk, nt, &fakeEncoder{err: errors.New("cipher broken")}, nil).Fulfill(context.Background(), fact())
	if err == nil {
		t.Fatal("credential failure must fail the event")
	}
	if len(tk.inserted) != 0 || len(nt.sent) != 0 {
		t.Fatal("no side effect may happen after a credential failure")
	}
}

func TestFulfillDuplicateDelivery(t *testing.T) {
	tk := &fakeTickets{existing: &model.FulfillmentRecord{
		PaymentID: "pay_ABCDEFGH1234",
		TicketID:  "TKT-20240301-EFGH1234",
	}}
	nt := &fakeNotifier{}
	out, err := newService(tk, nt, &fakeEncoder{}, nil).Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if !out.Duplicate || out.TicketID != "TKT-20240301-EFGH1234" || !out.DBSaved {
		t.Errorf("outcome = %+v", out)
	}
	if len(tk.inserted) != 0 {
		t.Error("no second row for a redelivered payment id")
	}
	if len(nt.sent) != 0 {
		t.Error("no second email for a redelivered payment id")
	}
}

func TestFulfillDedupCacheNeverReplacesLookup(t *testing.T) {
	tk := &fakeTickets{}
	out, err := newService(tk, &fakeNotifier{}, &fakeEncoder{}, &fakeDeduper{firstSeen: true}).
		Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatal(err)
	}
	if tk.lookups != 1 {
		t.Errorf("lookups = %d, want 1 even when the cache reports first-seen", tk.lookups)
	}
	if out.Duplicate {
		t.Error("genuinely new event must not be a duplicate")
	}
}

// A redelivery after the cache key expired (or the cache restarted) looks
// first-seen to the cache but must still resolve to the stored ticket.
func TestFulfillExpiredCacheKeyStillDeduplicates(t *testing.T) {
	tk := &fakeTickets{existing: &model.FulfillmentRecord{
		PaymentID: "pay_ABCDEFGH1234",
		TicketID:  "TKT-20240301-EFGH1234",
	}}
	nt := &fakeNotifier{}
	out, err := newService(tk, nt, &fakeEncoder{}, &fakeDeduper{firstSeen: true}).
		Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if !out.Duplicate || out.TicketID != "TKT-20240301-EFGH1234" {
		t.Errorf("outcome = %+v", out)
	}
	if len(tk.inserted) != 0 {
		t.Error("no second row for a redelivered payment id")
	}
	if len(nt.sent) != 0 {
		t.Error("no second email for a redelivered payment id")
	}
}

func TestFulfillDedupCacheHitConsultsStore(t *testing.T) {
	tk := &fakeTickets{existing: &model.FulfillmentRecord{TicketID: "TKT-20240301-EFGH1234"}}
	out, err := newService(tk, &fakeNotifier{}, &fakeEncoder{}, &fakeDeduper{firstSeen: false}).
		Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatal(err)
	}
	if tk.lookups != 1 {
		t.Errorf("lookups = %d, want 1", tk.lookups)
	}
	if !out.Duplicate {
		t.Error("cache hit with a stored row must report duplicate")
	}
}

func TestFulfillBothChannelsFailedIsNotIssued(t *testing.T) {
	tk := &fakeTickets{insertErr: errors.New("db down")}
	nt := &fakeNotifier{err: errors.New("smtp down")}
	trail := audit.NewMemoryTrail(16)
	s := New(tk, nt, &fakeEncoder{}, trail, nil, time.Second)
	s.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	out, err := s.Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if out.DBSaved || out.EmailSent {
		t.Errorf("outcome = %+v", out)
	}
	recent, err := trail.Recent(context.Background(), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Stage != "failed" {
		t.Errorf("trail = %+v, want stage %q", recent, "failed")
	}
}

func TestFulfillLookupErrorFailsOpen(t *testing.T) {
	tk := &fakeTickets{lookupErr: errors.New("db flaky")}
	out, err := newService(tk, &fakeNotifier{}, &fakeEncoder{}, nil).Fulfill(context.Background(), fact())
	if err != nil {
		t.Fatalf("lookup failure must not block issuance: %v", err)
	}
	if out.Duplicate || out.TicketID == "" {
		t.Errorf("outcome = %+v", out)
	}
}
