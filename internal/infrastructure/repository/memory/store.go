package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

// Store keeps documents and generation history in process memory.
type Store struct {
	mu          sync.RWMutex
	rfps        []domain.RFPDocument
	guides      []domain.BrandGuide
	generations []domain.SlideGeneration
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) CreateRFPDocument(_ context.Context, doc *domain.RFPDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rfps = append(s.rfps, *doc)
	return nil
}

func (s *Store) FindRFPDocument(_ context.Context, filename string) (*domain.RFPDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.RFPDocument
	for i := range s.rfps {
		doc := s.rfps[i]
		if doc.Filename != filename && doc.SavedFilename != filename {
			continue
		}
		if found == nil || !doc.UploadDate.Before(found.UploadDate) {
			found = &doc
		}
	}
	if found == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "find rfp document", fmt.Errorf("rfp document %q", filename))
	}
	return found, nil
}

func (s *Store) ListRFPDocuments(context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0, len(s.rfps))
	for _, doc := range s.rfps {
		out = append(out, domain.DocumentSummary{
			ID:            doc.ID,
			Filename:      doc.Filename,
			SavedFilename: doc.SavedFilename,
			Pages:         doc.Pages,
			UploadDate:    doc.UploadDate,
		})
	}
	sortSummaries(out)
	return out, nil
}

func (s *Store) CreateBrandGuide(_ context.Context, guide *domain.BrandGuide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guides = append(s.guides, *guide)
	return nil
}

func (s *Store) FindBrandGuide(_ context.Context, filename string) (*domain.BrandGuide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *domain.BrandGuide
	for i := range s.guides {
		guide := s.guides[i]
		if guide.Filename != filename {
			continue
		}
		if found == nil || !guide.UploadDate.Before(found.UploadDate) {
			found = &guide
		}
	}
	if found == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "find brand guide", fmt.Errorf("brand guide %q", filename))
	}
	return found, nil
}

func (s *Store) ListBrandGuides(context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.DocumentSummary, 0, len(s.guides))
	for _, guide := range s.guides {
		out = append(out, domain.DocumentSummary{
			ID:         guide.ID,
			Filename:   guide.Filename,
			BrandName:  guide.BrandName,
			Pages:      guide.Pages,
			UploadDate: guide.UploadDate,
		})
	}
	sortSummaries(out)
	return out, nil
}

// CreateGeneration stores a deep copy so later caller mutations do not leak into history.
func (s *Store) CreateGeneration(_ context.Context, generation *domain.SlideGeneration) error {
	stored, err := cloneGeneration(*generation)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations = append(s.generations, stored)
	return nil
}

func (s *Store) GetGeneration(_ context.Context, id string) (*domain.SlideGeneration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, generation := range s.generations {
		if generation.ID == id {
			out := generation
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get generation", fmt.Errorf("generation %s", id))
}

func (s *Store) ListGenerations(_ context.Context, limit int) ([]domain.SlideGeneration, error) {
	s.mu.RLock()
	out := append([]domain.SlideGeneration(nil), s.generations...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].GeneratedDate.After(out[j].GeneratedDate)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortSummaries(items []domain.DocumentSummary) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadDate.After(items[j].UploadDate)
	})
}

func cloneGeneration(in domain.SlideGeneration) (domain.SlideGeneration, error) {
	raw, err := json.Marshal(in.Slides)
	if err != nil {
		return domain.SlideGeneration{}, fmt.Errorf("marshal slides: %w", err)
	}
	out := in
	out.Slides = nil
	if err := json.Unmarshal(raw, &out.Slides); err != nil {
		return domain.SlideGeneration{}, fmt.Errorf("unmarshal slides: %w", err)
	}
	return out, nil
}
