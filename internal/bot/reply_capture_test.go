package bot

import (
	"testing"
	"time"

	"github.com/miloszkon/supportbot/internal/clock"
)

func TestReplyCaptureIsSingleUse(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	capture := newReplyCapture(15*time.Minute, clk)

	capture.arm("admin1", "u1")

	requester, ok := capture.consume("admin1")
	if !ok || requester != "u1" {
		t.Fatalf("consume = %q, %v; want u1, true", requester, ok)
	}
	if _, ok := capture.consume("admin1"); ok {
		t.Fatal("second consume succeeded")
	}
}

func TestReplyCaptureExpires(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	capture := newReplyCapture(15*time.Minute, clk)

	capture.arm("admin1", "u1")
	clk.Advance(16 * time.Minute)

	if _, ok := capture.consume("admin1"); ok {
		t.Fatal("consume succeeded after window elapsed")
	}
}

func TestReplyCaptureRearmReplacesTarget(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	capture := newReplyCapture(15*time.Minute, clk)

	capture.arm("admin1", "u1")
	capture.arm("admin1", "u2")

	requester, ok := capture.consume("admin1")
	if !ok || requester != "u2" {
		t.Fatalf("consume = %q, %v; want u2, true", requester, ok)
	}
}
