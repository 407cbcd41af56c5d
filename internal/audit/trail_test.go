package audit

import (
	"context"
	"strconv"
	"testing"

	"github.com/qtix/ticket-gateway/internal/model"
)

func TestMemoryTrailNewestFirst(t *testing.T) {
	tr := NewMemoryTrail(10)
	for i := 0; i < 3; i++ {
		tr.Record(context.Background(), model.AuditEvent{Stage: "issued", TicketID: "TKT-" + strconv.Itoa(i)})
	}

	got, err := tr.Recent(context.Background(), 50, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].TicketID != "TKT-2" || got[2].TicketID != "TKT-0" {
		t.Fatalf("not newest-first: %+v", got)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Fatal("entries must be stamped with id and timestamp")
	}
}

func TestMemoryTrailBounded(t *testing.T) {
	tr := NewMemoryTrail(5)
	for i := 0; i < 20; i++ {
		tr.Record(context.Background(), model.AuditEvent{TicketID: "TKT-" + strconv.Itoa(i)})
	}

	got, _ := tr.Recent(context.Background(), 100, 0)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].TicketID != "TKT-19" {
		t.Fatalf("newest entry = %q, want TKT-19", got[0].TicketID)
	}
}

func TestMemoryTrailOffset(t *testing.T) {
	tr := NewMemoryTrail(10)
	for i := 0; i < 4; i++ {
		tr.Record(context.Background(), model.AuditEvent{TicketID: "TKT-" + strconv.Itoa(i)})
	}

	got, _ := tr.Recent(context.Background(), 2, 1)
	if len(got) != 2 || got[0].TicketID != "TKT-2" || got[1].TicketID != "TKT-1" {
		t.Fatalf("unexpected page: %+v", got)
	}
}
