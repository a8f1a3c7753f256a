package httpadapter

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/config"
	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type uploaderFake struct {
	mu       sync.Mutex
	lastReq  domain.UploadRequest
	lastBody string
	err      error
}

func (f *uploaderFake) Upload(_ context.Context, req domain.UploadRequest, body io.Reader) (*domain.UploadResult, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastReq = req
	f.lastBody = string(raw)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	docType, _ := domain.ParseDocumentType(req.DocumentType)
	return &domain.UploadResult{
		Filename:      req.Filename,
		SavedFilename: "1760000000000-" + req.Filename,
		DocumentType:  docType,
		Pages:         3,
	}, nil
}

type generatorFake struct {
	mu      sync.Mutex
	calls   int
	lastReq domain.GenerateRequest
	err     error
	panics  bool
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerateRequest) (*domain.GenerationResult, error) {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	f.mu.Unlock()
	if f.panics {
		panic("generator exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GenerationResult{
		GenerationID:       "gen-1",
		RFPFilename:        req.RFPFilename,
		BrandGuideFilename: domain.DefaultBrandGuide,
		SlideCount:         1,
		Slides: []domain.Slide{
			{SlideNumber: 1, Title: "Intro", ContentType: domain.ContentText, Content: domain.TextContent("Hello"), Layout: domain.LayoutTitle},
		},
		GeneratedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}, nil
}

type catalogFake struct {
	lastLimit   int
	generations map[string]domain.SlideGeneration
}

func (f *catalogFake) ListFiles(context.Context) (*domain.FileListing, error) {
	return &domain.FileListing{
		RFPDocuments: []domain.DocumentSummary{{ID: "r1", Filename: "rfp.pdf", Pages: 4}},
		BrandGuides:  []domain.DocumentSummary{},
	}, nil
}

func (f *catalogFake) History(_ context.Context, limit int) ([]domain.SlideGeneration, error) {
	f.lastLimit = limit
	out := make([]domain.SlideGeneration, 0, len(f.generations))
	for _, g := range f.generations {
		out = append(out, g)
	}
	return out, nil
}

func (f *catalogFake) GetGeneration(_ context.Context, id string) (*domain.SlideGeneration, error) {
	g, ok := f.generations[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get generation", errors.New("id="+id))
	}
	return &g, nil
}

type deckServiceFake struct {
	lastRender domain.RenderRequest
	archived   map[string]string
	exportErr  error
}

func (f *deckServiceFake) Render(_ context.Context, req domain.RenderRequest, w io.Writer) error {
	if len(req.Slides) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "render deck", errors.New("slides array is required"))
	}
	f.lastRender = req
	_, err := io.WriteString(w, "PK-deck")
	return err
}

func (f *deckServiceFake) Archive(context.Context, string) error { return nil }

func (f *deckServiceFake) OpenArchived(_ context.Context, id string) (io.ReadCloser, error) {
	body, ok := f.archived[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open archived deck", errors.New("decks/"+id+".pptx"))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *deckServiceFake) ExportHistory(_ context.Context, _ int, w io.Writer) error {
	if f.exportErr != nil {
		return f.exportErr
	}
	_, err := io.WriteString(w, "PK-xlsx")
	return err
}

func (f *deckServiceFake) DeckFilename(rfpFilename string) string {
	base := strings.TrimSuffix(rfpFilename, ".pdf")
	if base == "" {
		base = "proposal"
	}
	return base + "-presentation.pptx"
}

func (f *deckServiceFake) DeckContentType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

func (f *deckServiceFake) ExportContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

type routerDeps struct {
	uploader  *uploaderFake
	generator *generatorFake
	catalog   *catalogFake
	decks     *deckServiceFake
}

func newRouterDeps() routerDeps {
	return routerDeps{
		uploader:  &uploaderFake{},
		generator: &generatorFake{},
		catalog: &catalogFake{generations: map[string]domain.SlideGeneration{
			"gen-1": {ID: "gen-1", RFPFilename: "rfp.pdf", BrandGuideFilename: domain.DefaultBrandGuide, SlideCount: 1, Status: domain.GenerationCompleted},
		}},
		decks: &deckServiceFake{archived: map[string]string{"gen-1": "PK-archived"}},
	}
}

func (d routerDeps) router(cfg config.Config) *Router {
	return NewRouter(cfg, d.uploader, d.generator, d.catalog, d.decks)
}
