package ports

import (
	"context"
	"io"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

// RFPDocumentStore persists extracted RFP documents. Find returns the newest
// document whose filename or saved filename matches, or domain.ErrNotFound.
type RFPDocumentStore interface {
	CreateRFPDocument(ctx context.Context, doc *domain.RFPDocument) error
	FindRFPDocument(ctx context.Context, filename string) (*domain.RFPDocument, error)
	ListRFPDocuments(ctx context.Context) ([]domain.DocumentSummary, error)
}

// BrandGuideStore persists uploaded brand guides.
type BrandGuideStore interface {
	CreateBrandGuide(ctx context.Context, guide *domain.BrandGuide) error
	FindBrandGuide(ctx context.Context, filename string) (*domain.BrandGuide, error)
	ListBrandGuides(ctx context.Context) ([]domain.DocumentSummary, error)
}

type DocumentStore interface {
	RFPDocumentStore
	BrandGuideStore
}

// GenerationStore is the append-only history of slide generations.
type GenerationStore interface {
	CreateGeneration(ctx context.Context, generation *domain.SlideGeneration) error
	GetGeneration(ctx context.Context, id string) (*domain.SlideGeneration, error)
	ListGenerations(ctx context.Context, limit int) ([]domain.SlideGeneration, error)
}

// ObjectStorage stores uploaded originals and rendered decks.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ContentExtractor returns plain text and page count of a staged document.
type ContentExtractor interface {
	Extract(ctx context.Context, path string) (domain.ExtractedContent, error)
}

// GenerationClient returns the free-form completion for a prompt.
type GenerationClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// EventPublisher announces stored generations.
type EventPublisher interface {
	PublishSlidesGenerated(ctx context.Context, event domain.SlidesGeneratedEvent) error
}

// EventSubscriber consumes stored-generation announcements until ctx is done.
type EventSubscriber interface {
	SubscribeSlidesGenerated(ctx context.Context, handler func(context.Context, domain.SlidesGeneratedEvent) error) error
}

// DeckRenderer writes a presentation file for validated slides.
type DeckRenderer interface {
	Render(ctx context.Context, deck domain.Deck, w io.Writer) error
	ContentType() string
	Extension() string
}

// HistoryExporter writes generation history as a spreadsheet.
type HistoryExporter interface {
	Export(ctx context.Context, generations []domain.SlideGeneration, w io.Writer) error
	ContentType() string
}
