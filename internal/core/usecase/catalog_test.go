package usecase

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

func TestCatalogListFiles(t *testing.T) {
	docs := &docStoreFake{
		rfps:   []domain.RFPDocument{{ID: "r1", Filename: "a.pdf"}},
		guides: []domain.BrandGuide{{ID: "b1", Filename: "brand.pdf", BrandName: "brand"}},
	}
	uc := NewCatalogUseCase(docs, &generationStoreFake{}, 0)

	listing, err := uc.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(listing.RFPDocuments) != 1 || len(listing.BrandGuides) != 1 {
		t.Fatalf("unexpected listing %+v", listing)
	}
}

func TestCatalogHistoryCapsLimit(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &generationStoreFake{}
	for i := 0; i < 5; i++ {
		store.generations = append(store.generations, domain.SlideGeneration{
			ID:            string(rune('a' + i)),
			GeneratedDate: base.Add(time.Duration(i) * time.Hour),
		})
	}
	uc := NewCatalogUseCase(&docStoreFake{}, store, 3)

	history, err := uc.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 3 || store.lastLimit != 3 {
		t.Fatalf("expected 3 entries with limit 3, got %d/%d", len(history), store.lastLimit)
	}
	if history[0].ID != "e" {
		t.Fatalf("expected newest first, got %s", history[0].ID)
	}

	if _, err := uc.History(context.Background(), 100); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if store.lastLimit != 3 {
		t.Fatalf("expected limit capped at 3, got %d", store.lastLimit)
	}

	if _, err := uc.History(context.Background(), 2); err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if store.lastLimit != 2 {
		t.Fatalf("expected explicit limit 2, got %d", store.lastLimit)
	}
}

func TestCatalogGetGeneration(t *testing.T) {
	store := &generationStoreFake{generations: []domain.SlideGeneration{{ID: "gen-1"}}}
	uc := NewCatalogUseCase(&docStoreFake{}, store, 0)

	if _, err := uc.GetGeneration(context.Background(), "gen-1"); err != nil {
		t.Fatalf("GetGeneration() error = %v", err)
	}
	if _, err := uc.GetGeneration(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.GetGeneration(context.Background(), " "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeckRenderRequiresSlides(t *testing.T) {
	uc := NewDeckUseCase(&rendererFake{}, &exporterFake{}, &generationStoreFake{}, newStorageFake(), 0)

	err := uc.Render(context.Background(), domain.RenderRequest{}, io.Discard)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestDeckRenderPassesColorsAndTitle(t *testing.T) {
	renderer := &rendererFake{}
	uc := NewDeckUseCase(renderer, &exporterFake{}, &generationStoreFake{}, newStorageFake(), 0)

	var buf bytes.Buffer
	err := uc.Render(context.Background(), domain.RenderRequest{
		Slides:      []domain.Slide{{SlideNumber: 1, Title: "Intro"}},
		RFPFilename: "city-rfp.pdf",
		BrandColors: &domain.BrandColors{Primary: "#123456"},
	}, &buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(renderer.decks) != 1 || renderer.decks[0].Colors.Primary != "#123456" || renderer.decks[0].Title != "city-rfp" {
		t.Fatalf("unexpected deck %+v", renderer.decks)
	}
	if buf.String() != "deck:city-rfp" {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if got := uc.DeckFilename("city rfp.pdf"); got != "city_rfp-presentation.pptx" {
		t.Fatalf("unexpected deck filename %q", got)
	}
}

func TestDeckArchiveAndOpen(t *testing.T) {
	store := &generationStoreFake{generations: []domain.SlideGeneration{{
		ID:          "gen-1",
		RFPFilename: "rfp.pdf",
		Slides:      []domain.Slide{{SlideNumber: 1, Title: "Intro"}},
	}}}
	storage := newStorageFake()
	uc := NewDeckUseCase(&rendererFake{}, &exporterFake{}, store, storage, 0)

	if _, err := uc.OpenArchived(context.Background(), "gen-1"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found before archive, got %v", err)
	}
	if err := uc.Archive(context.Background(), "gen-1"); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if _, ok := storage.objects["decks/gen-1.pptx"]; !ok {
		t.Fatalf("expected deck under decks/gen-1.pptx, got %v", storage.objects)
	}

	reader, err := uc.OpenArchived(context.Background(), "gen-1")
	if err != nil {
		t.Fatalf("OpenArchived() error = %v", err)
	}
	defer reader.Close()
	raw, _ := io.ReadAll(reader)
	if string(raw) != "deck:rfp" {
		t.Fatalf("unexpected archived deck %q", raw)
	}

	if err := uc.Archive(context.Background(), "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeckExportHistory(t *testing.T) {
	store := &generationStoreFake{generations: []domain.SlideGeneration{{ID: "gen-1"}, {ID: "gen-2"}}}
	exporter := &exporterFake{}
	uc := NewDeckUseCase(&rendererFake{}, exporter, store, newStorageFake(), 10)

	var buf bytes.Buffer
	if err := uc.ExportHistory(context.Background(), 0, &buf); err != nil {
		t.Fatalf("ExportHistory() error = %v", err)
	}
	if len(exporter.exported) != 2 || store.lastLimit != 10 {
		t.Fatalf("unexpected export %d limit %d", len(exporter.exported), store.lastLimit)
	}
	if uc.ExportContentType() != "application/test-sheet" || uc.DeckContentType() != "application/test-deck" {
		t.Fatalf("unexpected content types")
	}
}
