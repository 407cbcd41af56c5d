package ticket

import (
	"testing"
	"time"
)

func TestNewIDFormat(t *testing.T) {
	issued := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	got := NewID(issued, "pay_ABCDEFGH1234")
	want := "TKT-20240305-EFGH1234"
	if got != want {
		t.Fatalf("NewID = %q, want %q", got, want)
	}
}

func TestNewIDShortPaymentID(t *testing.T) {
	issued := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	got := NewID(issued, "pay_1")
	want := "TKT-20240305-pay_1"
	if got != want {
		t.Fatalf("NewID = %q, want %q", got, want)
	}
}

func TestNewIDDateIsUTC(t *testing.T) {
	// 01:00 IST on March 5 is still March 4 in UTC. The id must not follow
	// the local zone of the timestamp.
	ist := time.FixedZone("IST", 5*3600+1800)
	issued := time.Date(2024, 3, 5, 1, 0, 0, 0, ist)
	got := NewID(issued, "pay_ABCDEFGH1234")
	want := "TKT-20240304-EFGH1234"
	if got != want {
		t.Fatalf("NewID = %q, want %q", got, want)
	}
}
