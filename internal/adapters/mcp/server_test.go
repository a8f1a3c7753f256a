package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type generatorFake struct {
	lastReq domain.GenerateRequest
	err     error
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerateRequest) (*domain.GenerationResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.GenerationResult{
		GenerationID:       "gen-1",
		RFPFilename:        req.RFPFilename,
		BrandGuideFilename: domain.DefaultBrandGuide,
		SlideCount:         1,
		Slides:             []domain.Slide{{SlideNumber: 1, Title: "Intro", ContentType: domain.ContentText, Content: domain.TextContent("Hi"), Layout: domain.LayoutTitle}},
	}, nil
}

type catalogFake struct{}

func (catalogFake) ListFiles(context.Context) (*domain.FileListing, error) {
	return &domain.FileListing{
		RFPDocuments: []domain.DocumentSummary{{ID: "r1", Filename: "rfp.pdf"}},
		BrandGuides:  []domain.DocumentSummary{{ID: "b1", Filename: "brand.pdf", BrandName: "brand"}},
	}, nil
}

func (catalogFake) History(context.Context, int) ([]domain.SlideGeneration, error) { return nil, nil }

func (catalogFake) GetGeneration(context.Context, string) (*domain.SlideGeneration, error) {
	return nil, domain.ErrNotFound
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected tool result content")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text
}

func TestGenerateSlidesTool(t *testing.T) {
	gen := &generatorFake{}
	s := NewServer(gen, catalogFake{})

	res, err := s.handleGenerateSlides(context.Background(), callRequest(toolGenerateSlides, map[string]any{
		"rfpFilename":        "rfp.pdf",
		"brandGuideFilename": "brand.pdf",
		"slideCount":         float64(7),
	}))
	if err != nil {
		t.Fatalf("handleGenerateSlides() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}
	if gen.lastReq.SlideCount != 7 || gen.lastReq.BrandGuideFilename != "brand.pdf" {
		t.Fatalf("unexpected request %+v", gen.lastReq)
	}

	var out domain.GenerationResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.GenerationID != "gen-1" || len(out.Slides) != 1 {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestGenerateSlidesToolRequiresFilename(t *testing.T) {
	gen := &generatorFake{}
	s := NewServer(gen, catalogFake{})

	res, err := s.handleGenerateSlides(context.Background(), callRequest(toolGenerateSlides, map[string]any{}))
	if err != nil {
		t.Fatalf("handleGenerateSlides() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error for missing filename")
	}
	if gen.lastReq.RFPFilename != "" {
		t.Fatalf("generator must not be called")
	}
}

func TestGenerateSlidesToolReportsDomainErrors(t *testing.T) {
	gen := &generatorFake{err: domain.WrapError(domain.ErrNotFound, "find rfp", errors.New("missing.pdf"))}
	s := NewServer(gen, catalogFake{})

	res, err := s.handleGenerateSlides(context.Background(), callRequest(toolGenerateSlides, map[string]any{"rfpFilename": "missing.pdf"}))
	if err != nil {
		t.Fatalf("handleGenerateSlides() error = %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected tool error result")
	}
}

func TestListDocumentsTool(t *testing.T) {
	s := NewServer(&generatorFake{}, catalogFake{})

	res, err := s.handleListDocuments(context.Background(), callRequest(toolListDocuments, nil))
	if err != nil {
		t.Fatalf("handleListDocuments() error = %v", err)
	}
	var listing domain.FileListing
	if err := json.Unmarshal([]byte(resultText(t, res)), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listing.RFPDocuments) != 1 || len(listing.BrandGuides) != 1 {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if s.Handler() == nil {
		t.Fatalf("expected streamable http handler")
	}
}
