package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type docStoreFake struct {
	mu        sync.Mutex
	rfps      []domain.RFPDocument
	guides    []domain.BrandGuide
	createErr error
	findErr   error
}

func (f *docStoreFake) CreateRFPDocument(_ context.Context, doc *domain.RFPDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.rfps = append(f.rfps, *doc)
	return nil
}

func (f *docStoreFake) FindRFPDocument(_ context.Context, filename string) (*domain.RFPDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := len(f.rfps) - 1; i >= 0; i-- {
		if f.rfps[i].Filename == filename || f.rfps[i].SavedFilename == filename {
			doc := f.rfps[i]
			return &doc, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find rfp document", errors.New(filename))
}

func (f *docStoreFake) ListRFPDocuments(context.Context) ([]domain.DocumentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DocumentSummary, 0, len(f.rfps))
	for _, doc := range f.rfps {
		out = append(out, domain.DocumentSummary{ID: doc.ID, Filename: doc.Filename, SavedFilename: doc.SavedFilename})
	}
	return out, nil
}

func (f *docStoreFake) CreateBrandGuide(_ context.Context, guide *domain.BrandGuide) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.guides = append(f.guides, *guide)
	return nil
}

func (f *docStoreFake) FindBrandGuide(_ context.Context, filename string) (*domain.BrandGuide, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.guides) - 1; i >= 0; i-- {
		if f.guides[i].Filename == filename {
			guide := f.guides[i]
			return &guide, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find brand guide", errors.New(filename))
}

func (f *docStoreFake) ListBrandGuides(context.Context) ([]domain.DocumentSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.DocumentSummary, 0, len(f.guides))
	for _, guide := range f.guides {
		out = append(out, domain.DocumentSummary{ID: guide.ID, Filename: guide.Filename, BrandName: guide.BrandName})
	}
	return out, nil
}

type generationStoreFake struct {
	mu          sync.Mutex
	generations []domain.SlideGeneration
	err         error
	lastLimit   int
}

func (f *generationStoreFake) CreateGeneration(_ context.Context, generation *domain.SlideGeneration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.generations = append(f.generations, *generation)
	return nil
}

func (f *generationStoreFake) GetGeneration(_ context.Context, id string) (*domain.SlideGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, generation := range f.generations {
		if generation.ID == id {
			out := generation
			return &out, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get generation", errors.New(id))
}

func (f *generationStoreFake) ListGenerations(_ context.Context, limit int) ([]domain.SlideGeneration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	out := append([]domain.SlideGeneration(nil), f.generations...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedDate.After(out[j].GeneratedDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *generationStoreFake) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.generations)
}

type clientFake struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	block    bool
}

func (f *clientFake) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *clientFake) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.SlidesGeneratedEvent
	err    error
}

func (f *publisherFake) PublishSlidesGenerated(_ context.Context, event domain.SlidesGeneratedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type storageFake struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = raw
	return nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type extractorFake struct {
	content   domain.ExtractedContent
	err       error
	seenPath  string
	seenBytes []byte
}

func (f *extractorFake) Extract(_ context.Context, path string) (domain.ExtractedContent, error) {
	f.seenPath = path
	if raw, err := os.ReadFile(path); err == nil {
		f.seenBytes = raw
	}
	if f.err != nil {
		return domain.ExtractedContent{}, f.err
	}
	return f.content, nil
}

type rendererFake struct {
	decks []domain.Deck
	err   error
}

func (f *rendererFake) Render(_ context.Context, deck domain.Deck, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	f.decks = append(f.decks, deck)
	_, err := io.WriteString(w, "deck:"+deck.Title)
	return err
}

func (f *rendererFake) ContentType() string { return "application/test-deck" }
func (f *rendererFake) Extension() string   { return ".pptx" }

type exporterFake struct {
	exported []domain.SlideGeneration
}

func (f *exporterFake) Export(_ context.Context, generations []domain.SlideGeneration, w io.Writer) error {
	f.exported = generations
	_, err := io.WriteString(w, "export")
	return err
}

func (f *exporterFake) ContentType() string { return "application/test-sheet" }

const validSlidesJSON = `[
  {"slideNumber": 1, "title": "Proposal", "contentType": "text", "content": "Confidential response", "layout": "title"},
  {"slideNumber": 2, "title": "Summary", "contentType": "bullets", "content": ["Scope", "Value"], "layout": "bullets"},
  {"slideNumber": 3, "title": "Growth", "contentType": "chart", "content": {"chartType": "bar", "data": {"2024": 3}}, "layout": "chart"}
]`
