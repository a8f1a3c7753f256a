package memory

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

func TestFindRFPDocumentPrefersNewest(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = store.CreateRFPDocument(ctx, &domain.RFPDocument{ID: "old", Filename: "rfp.pdf", SavedFilename: "1-rfp.pdf", UploadDate: older})
	_ = store.CreateRFPDocument(ctx, &domain.RFPDocument{ID: "new", Filename: "rfp.pdf", SavedFilename: "2-rfp.pdf", UploadDate: older.Add(time.Hour)})

	doc, err := store.FindRFPDocument(ctx, "rfp.pdf")
	if err != nil {
		t.Fatalf("FindRFPDocument() error = %v", err)
	}
	if doc.ID != "new" {
		t.Fatalf("expected newest document, got %s", doc.ID)
	}

	doc, err = store.FindRFPDocument(ctx, "1-rfp.pdf")
	if err != nil || doc.ID != "old" {
		t.Fatalf("expected lookup by saved filename, got %+v err=%v", doc, err)
	}

	if _, err := store.FindRFPDocument(ctx, "other.pdf"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListGenerationsNewestFirstWithLimit(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.CreateGeneration(ctx, &domain.SlideGeneration{ID: id, GeneratedDate: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("CreateGeneration() error = %v", err)
		}
	}

	list, err := store.ListGenerations(ctx, 2)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestCreateGenerationIsolatesCallerSlides(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	slides := []domain.Slide{{SlideNumber: 1, Title: "Intro", ContentType: domain.ContentBullets, Content: domain.BulletContent("a")}}

	if err := store.CreateGeneration(ctx, &domain.SlideGeneration{ID: "g", Slides: slides}); err != nil {
		t.Fatalf("CreateGeneration() error = %v", err)
	}
	slides[0].Title = "Mutated"

	got, err := store.GetGeneration(ctx, "g")
	if err != nil {
		t.Fatalf("GetGeneration() error = %v", err)
	}
	if got.Slides[0].Title != "Intro" {
		t.Fatalf("expected stored copy to be isolated, got %q", got.Slides[0].Title)
	}
	if _, err := store.GetGeneration(ctx, "missing"); !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBrandGuidesRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	_ = store.CreateBrandGuide(ctx, &domain.BrandGuide{ID: "b", Filename: "brand.pdf", BrandName: "brand"})

	guide, err := store.FindBrandGuide(ctx, "brand.pdf")
	if err != nil || guide.BrandName != "brand" {
		t.Fatalf("unexpected guide %+v err=%v", guide, err)
	}
	list, _ := store.ListBrandGuides(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one guide")
	}
}
