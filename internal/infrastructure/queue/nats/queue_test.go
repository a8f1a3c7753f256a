package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

func TestEventCodecRoundTrip(t *testing.T) {
	in := domain.SlidesGeneratedEvent{
		GenerationID: "gen-1",
		RFPFilename:  "rfp.pdf",
		SlideCount:   5,
		GeneratedAt:  time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := encodeEvent(in)
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	out, err := decodeEvent(payload)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if out.GenerationID != in.GenerationID || out.SlideCount != in.SlideCount || !out.GeneratedAt.Equal(in.GeneratedAt) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

func TestDecodeEventRejectsMissingID(t *testing.T) {
	if _, err := decodeEvent([]byte(`{"rfpFilename":"a.pdf"}`)); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := decodeEvent([]byte(`not json`)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPublishErrorsBecomeTemporary(t *testing.T) {
	err := publishError(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}

	permanent := errors.New("bad subject")
	if got := publishError(permanent); got != permanent {
		t.Fatalf("expected permanent error unchanged, got %v", got)
	}
	if class := classifyPublishError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("expected cancellation to be ignored, got %+v", class)
	}
}

func TestReconnectingIsTransient(t *testing.T) {
	if !classifyPublishError(nats.ErrConnectionReconnecting).Retryable {
		t.Fatalf("reconnecting connection must be retryable")
	}
	if publishError(nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}
