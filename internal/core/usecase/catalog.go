package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

const DefaultHistoryLimit = 50

type CatalogUseCase struct {
	docs         ports.DocumentStore
	generations  ports.GenerationStore
	historyLimit int
}

func NewCatalogUseCase(docs ports.DocumentStore, generations ports.GenerationStore, historyLimit int) *CatalogUseCase {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &CatalogUseCase{
		docs:         docs,
		generations:  generations,
		historyLimit: historyLimit,
	}
}

func (uc *CatalogUseCase) ListFiles(ctx context.Context) (*domain.FileListing, error) {
	rfps, err := uc.docs.ListRFPDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rfp documents: %w", err)
	}
	guides, err := uc.docs.ListBrandGuides(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brand guides: %w", err)
	}
	if rfps == nil {
		rfps = []domain.DocumentSummary{}
	}
	if guides == nil {
		guides = []domain.DocumentSummary{}
	}
	return &domain.FileListing{
		RFPDocuments: rfps,
		BrandGuides:  guides,
	}, nil
}

// History returns the newest generations first. limit <= 0 uses the configured default.
func (uc *CatalogUseCase) History(ctx context.Context, limit int) ([]domain.SlideGeneration, error) {
	if limit <= 0 || limit > uc.historyLimit {
		limit = uc.historyLimit
	}
	generations, err := uc.generations.ListGenerations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	if generations == nil {
		generations = []domain.SlideGeneration{}
	}
	return generations, nil
}

func (uc *CatalogUseCase) GetGeneration(ctx context.Context, id string) (*domain.SlideGeneration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "get generation", errors.New("generation id is required"))
	}
	generation, err := uc.generations.GetGeneration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return generation, nil
}
