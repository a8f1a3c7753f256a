package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

const deckStoragePath = "decks"

type DeckUseCase struct {
	renderer    ports.DeckRenderer
	exporter    ports.HistoryExporter
	generations ports.GenerationStore
	storage     ports.ObjectStorage
	historyCap  int
}

func NewDeckUseCase(
	renderer ports.DeckRenderer,
	exporter ports.HistoryExporter,
	generations ports.GenerationStore,
	storage ports.ObjectStorage,
	historyCap int,
) *DeckUseCase {
	if historyCap <= 0 {
		historyCap = DefaultHistoryLimit
	}
	return &DeckUseCase{
		renderer:    renderer,
		exporter:    exporter,
		generations: generations,
		storage:     storage,
		historyCap:  historyCap,
	}
}

func (uc *DeckUseCase) Render(ctx context.Context, req domain.RenderRequest, w io.Writer) error {
	if len(req.Slides) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "render deck", errors.New("slides array is required and must not be empty"))
	}
	deck := domain.Deck{
		Title:  deckTitle(req.RFPFilename),
		Slides: req.Slides,
	}
	if req.BrandColors != nil {
		deck.Colors = *req.BrandColors
	}
	if err := uc.renderer.Render(ctx, deck, w); err != nil {
		return fmt.Errorf("render deck: %w", err)
	}
	return nil
}

// Archive renders a stored generation with default colors and keeps it in object storage.
func (uc *DeckUseCase) Archive(ctx context.Context, generationID string) error {
	generation, err := uc.generations.GetGeneration(ctx, generationID)
	if err != nil {
		return fmt.Errorf("load generation: %w", err)
	}
	if len(generation.Slides) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "archive deck", fmt.Errorf("generation %s has no slides", generationID))
	}

	var buf bytes.Buffer
	deck := domain.Deck{Title: deckTitle(generation.RFPFilename), Slides: generation.Slides}
	if err := uc.renderer.Render(ctx, deck, &buf); err != nil {
		return fmt.Errorf("render deck: %w", err)
	}

	key := uc.deckKey(generationID)
	if err := uc.storage.Save(ctx, key, &buf); err != nil {
		return fmt.Errorf("save deck: %w", err)
	}
	slog.Info("deck_archived", "generation_id", generationID, "key", key, "slides", len(generation.Slides))
	return nil
}

func (uc *DeckUseCase) OpenArchived(ctx context.Context, generationID string) (io.ReadCloser, error) {
	generationID = strings.TrimSpace(generationID)
	if generationID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open deck", errors.New("generation id is required"))
	}
	reader, err := uc.storage.Open(ctx, uc.deckKey(generationID))
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("open deck: %w", err)
	}
	return reader, nil
}

func (uc *DeckUseCase) ExportHistory(ctx context.Context, limit int, w io.Writer) error {
	if limit <= 0 || limit > uc.historyCap {
		limit = uc.historyCap
	}
	generations, err := uc.generations.ListGenerations(ctx, limit)
	if err != nil {
		return fmt.Errorf("list generations: %w", err)
	}
	if err := uc.exporter.Export(ctx, generations, w); err != nil {
		return fmt.Errorf("export history: %w", err)
	}
	return nil
}

func (uc *DeckUseCase) DeckFilename(rfpFilename string) string {
	return deckBaseName(rfpFilename) + "-presentation" + uc.renderer.Extension()
}

func (uc *DeckUseCase) DeckContentType() string { return uc.renderer.ContentType() }

func (uc *DeckUseCase) ExportContentType() string { return uc.exporter.ContentType() }

func (uc *DeckUseCase) deckKey(generationID string) string {
	return path.Join(deckStoragePath, sanitizeFilename(generationID)+uc.renderer.Extension())
}

func deckTitle(rfpFilename string) string {
	base := strings.TrimSuffix(filepath.Base(rfpFilename), filepath.Ext(rfpFilename))
	if strings.TrimSpace(base) == "" || base == "." {
		return "Proposal Presentation"
	}
	return base
}

func deckBaseName(rfpFilename string) string {
	if strings.TrimSpace(rfpFilename) == "" {
		return "rfp"
	}
	return strings.TrimSuffix(sanitizeFilename(rfpFilename), filepath.Ext(sanitizeFilename(rfpFilename)))
}
