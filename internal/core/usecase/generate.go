package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

type GenerateOptions struct {
	DefaultSlideCount int
	Timeout           time.Duration
	Prompt            PromptOptions
}

type GenerateSlidesUseCase struct {
	docs     ports.DocumentStore
	client   ports.GenerationClient
	recorder *GenerationRecorder
	opts     GenerateOptions
}

func NewGenerateSlidesUseCase(
	docs ports.DocumentStore,
	client ports.GenerationClient,
	recorder *GenerationRecorder,
	opts GenerateOptions,
) *GenerateSlidesUseCase {
	if opts.DefaultSlideCount <= 0 {
		opts.DefaultSlideCount = DefaultSlideCount
	}
	return &GenerateSlidesUseCase{
		docs:     docs,
		client:   client,
		recorder: recorder,
		opts:     opts,
	}
}

func (uc *GenerateSlidesUseCase) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerationResult, error) {
	rfpFilename := strings.TrimSpace(req.RFPFilename)
	if rfpFilename == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "generate slides", errors.New("rfpFilename is required"))
	}
	slideCount := req.SlideCount
	if slideCount == 0 {
		slideCount = uc.opts.DefaultSlideCount
	}
	if err := ValidateSlideCount(slideCount); err != nil {
		return nil, err
	}

	rfp, err := uc.docs.FindRFPDocument(ctx, rfpFilename)
	if err != nil {
		return nil, fmt.Errorf("load rfp document: %w", err)
	}

	brand, err := uc.lookupBrandGuide(ctx, req.BrandGuideFilename)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildSlidePromptWithOptions(rfp.Content, slideCount, brand.Guidance(), uc.opts.Prompt)
	if err != nil {
		return nil, err
	}

	raw, err := uc.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	slides, issues, err := ParseSlides(raw)
	if err != nil {
		slog.Warn("slide_parse_failed", "rfp_filename", rfp.Filename, "response_chars", len(raw), "error", err)
		return nil, err
	}
	for _, issue := range issues {
		slog.Warn("slide_validation_issue",
			"rfp_filename", rfp.Filename,
			"index", issue.Index,
			"field", issue.Field,
			"message", issue.Message,
		)
	}

	brandName := domain.DefaultBrandGuide
	if brand != nil {
		brandName = brand.Filename
	}

	generation, err := uc.recorder.Record(context.WithoutCancel(ctx), rfp.Filename, brandName, slides)
	if err != nil {
		slog.Error("generation_record_failed", "rfp_filename", rfp.Filename, "error", err)
	}

	slog.Info("slides_generated",
		"generation_id", generation.ID,
		"rfp_filename", rfp.Filename,
		"brand_guide", brandName,
		"requested_slides", slideCount,
		"slide_count", len(slides),
		"issues", len(issues),
	)

	result := &domain.GenerationResult{
		RFPFilename:        rfp.Filename,
		BrandGuideFilename: brandName,
		SlideCount:         len(slides),
		Slides:             slides,
		GeneratedAt:        generation.GeneratedDate,
		Issues:             issues,
	}
	if err == nil {
		result.GenerationID = generation.ID
	}
	return result, nil
}

func (uc *GenerateSlidesUseCase) lookupBrandGuide(ctx context.Context, filename string) (*domain.BrandGuide, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || filename == domain.DefaultBrandGuide {
		return nil, nil
	}
	guide, err := uc.docs.FindBrandGuide(ctx, filename)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			slog.Info("brand_guide_missing", "brand_guide", filename)
			return nil, nil
		}
		return nil, fmt.Errorf("load brand guide: %w", err)
	}
	return guide, nil
}

func (uc *GenerateSlidesUseCase) complete(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}

	raw, err := uc.client.Complete(callCtx, prompt)
	if err == nil {
		return raw, nil
	}
	if domain.IsKind(err, domain.ErrGenerationTimeout) ||
		domain.IsKind(err, domain.ErrGenerationUnavailable) ||
		domain.IsKind(err, domain.ErrMalformedOutput) {
		return "", fmt.Errorf("complete prompt: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "", domain.WrapError(domain.ErrGenerationTimeout, "complete prompt", err)
	}
	return "", domain.WrapError(domain.ErrGenerationUnavailable, "complete prompt", err)
}
