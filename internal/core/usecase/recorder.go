package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

// GenerationRecorder appends completed generations to history and announces them.
type GenerationRecorder struct {
	store     ports.GenerationStore
	publisher ports.EventPublisher

	now   func() time.Time
	newID func() string
}

// NewGenerationRecorder builds a recorder. publisher may be nil when events are disabled.
func NewGenerationRecorder(store ports.GenerationStore, publisher ports.EventPublisher) *GenerationRecorder {
	return &GenerationRecorder{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// Record stores the generation. The returned record is populated even when the
// write fails so callers can still answer with what the model produced.
func (r *GenerationRecorder) Record(
	ctx context.Context,
	rfpFilename string,
	brandGuideFilename string,
	slides []domain.Slide,
) (*domain.SlideGeneration, error) {
	if strings.TrimSpace(brandGuideFilename) == "" {
		brandGuideFilename = domain.DefaultBrandGuide
	}

	generation := &domain.SlideGeneration{
		ID:                 r.newID(),
		RFPFilename:        rfpFilename,
		BrandGuideFilename: brandGuideFilename,
		SlideCount:         len(slides),
		Slides:             slides,
		GeneratedDate:      r.now(),
		Status:             domain.GenerationCompleted,
	}

	if err := r.store.CreateGeneration(ctx, generation); err != nil {
		return generation, fmt.Errorf("store generation: %w", err)
	}

	if r.publisher != nil {
		event := domain.SlidesGeneratedEvent{
			GenerationID: generation.ID,
			RFPFilename:  generation.RFPFilename,
			SlideCount:   generation.SlideCount,
			GeneratedAt:  generation.GeneratedDate,
		}
		if err := r.publisher.PublishSlidesGenerated(ctx, event); err != nil {
			slog.Warn("generation_event_publish_failed", "generation_id", generation.ID, "error", err)
		}
	}
	return generation, nil
}
