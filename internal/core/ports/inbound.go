package ports

import (
	"context"
	"io"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

// DocumentUploader is the inbound contract for document upload and extraction.
type DocumentUploader interface {
	Upload(ctx context.Context, req domain.UploadRequest, body io.Reader) (*domain.UploadResult, error)
}

// SlideGenerator is the inbound contract for slide generation orchestration.
type SlideGenerator interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerationResult, error)
}

// Catalog is the inbound read model over stored documents and history.
type Catalog interface {
	ListFiles(ctx context.Context) (*domain.FileListing, error)
	History(ctx context.Context, limit int) ([]domain.SlideGeneration, error)
	GetGeneration(ctx context.Context, id string) (*domain.SlideGeneration, error)
}

// DeckService renders, archives and exports presentation artifacts.
type DeckService interface {
	Render(ctx context.Context, req domain.RenderRequest, w io.Writer) error
	Archive(ctx context.Context, generationID string) error
	OpenArchived(ctx context.Context, generationID string) (io.ReadCloser, error)
	ExportHistory(ctx context.Context, limit int, w io.Writer) error
	DeckFilename(rfpFilename string) string
	DeckContentType() string
	ExportContentType() string
}
