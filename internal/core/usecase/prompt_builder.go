package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	MinSlideCount     = 3
	MaxSlideCount     = 15
	DefaultSlideCount = 5

	ConfidentialityMarker = "Confidential"

	truncationMarker = "\n[... RFP content truncated ...]"
)

// PromptOptions tunes prompt construction. Zero value means no truncation.
type PromptOptions struct {
	MaxRFPChars int
}

// BuildSlidePrompt composes the model instruction for one generation.
func BuildSlidePrompt(rfpText string, slideCount int, brand *domain.BrandGuidance) (string, error) {
	return BuildSlidePromptWithOptions(rfpText, slideCount, brand, PromptOptions{})
}

func BuildSlidePromptWithOptions(
	rfpText string,
	slideCount int,
	brand *domain.BrandGuidance,
	opts PromptOptions,
) (string, error) {
	if strings.TrimSpace(rfpText) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "build prompt", errors.New("rfp text is empty"))
	}
	if err := ValidateSlideCount(slideCount); err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert proposal strategist and presentation designer.\n")
	fmt.Fprintf(&b, "Create exactly %d presentation slides that respond to the RFP below.\n\n", slideCount)

	b.WriteString("BRAND GUIDELINES:\n")
	b.WriteString(brandClause(brand))
	b.WriteString("\n\n")

	b.WriteString("RFP CONTENT:\n")
	b.WriteString(truncateRunes(strings.TrimSpace(rfpText), opts.MaxRFPChars))
	b.WriteString("\n\n")

	b.WriteString("REQUIREMENTS:\n")
	for i, requirement := range structuralRequirements() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, requirement)
	}
	b.WriteString("\n")

	b.WriteString("OUTPUT FORMAT:\n")
	fmt.Fprintf(&b, "Return ONLY a JSON array with exactly %d objects and nothing else.\n", slideCount)
	b.WriteString("No markdown, no code fences, no commentary before or after the array.\n")
	b.WriteString("Each object must have this shape:\n")
	b.WriteString(slideShapeExample)
	b.WriteString("\n")
	b.WriteString(`"contentType" must be one of "bullets", "text" or "chart". ` +
		`Use an array of strings for "bullets", a single string for "text" and an object ` +
		`{"chartType": "...", "data": {...}} for "chart".` + "\n")
	b.WriteString(`"layout" must be one of "title", "bullets", "twoColumn" or "chart".` + "\n")
	fmt.Fprintf(&b, `"slideNumber" values must run from 1 to %d without gaps.`+"\n", slideCount)

	return b.String(), nil
}

func ValidateSlideCount(slideCount int) error {
	if slideCount < MinSlideCount || slideCount > MaxSlideCount {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"validate slide count",
			fmt.Errorf("slideCount must be between %d and %d, got %d", MinSlideCount, MaxSlideCount, slideCount),
		)
	}
	return nil
}

func brandClause(brand *domain.BrandGuidance) string {
	if brand == nil {
		return "Use professional corporate styling: a clear, confident and neutral business voice."
	}
	return fmt.Sprintf(
		"Brand: %s\nVoice & Tone: %s\nColor Palette: %s\nTypography: %s",
		brand.BrandName,
		brand.VoiceTone,
		brand.ColorPalette,
		brand.Typography,
	)
}

func structuralRequirements() []string {
	return []string{
		"Slide 1 must be a title slide using the \"title\" layout.",
		"Include an executive summary slide early in the deck.",
		"Address the key requirements, scope and evaluation criteria stated in the RFP.",
		"Follow a clear narrative hierarchy from problem to solution to value.",
		"Mix content types (bullets, text and chart) where they fit the material.",
		"Keep slides concise: at most 5 bullets per slide and short sentences.",
		"Mark slide 1 as \"" + ConfidentialityMarker + "\" in its content or notes.",
		"Keep the voice consistent with the brand guidelines above.",
	}
}

const slideShapeExample = `{
  "slideNumber": 1,
  "title": "Slide title",
  "contentType": "bullets",
  "content": ["First point", "Second point"],
  "layout": "bullets",
  "notes": "Presenter notes"
}`

func truncateRunes(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars]) + truncationMarker
}
