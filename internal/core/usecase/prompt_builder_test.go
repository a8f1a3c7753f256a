package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

func TestBuildSlidePromptWithBrand(t *testing.T) {
	brand := &domain.BrandGuidance{
		BrandName:    "Acme Corp",
		VoiceTone:    "Bold and direct",
		ColorPalette: "#112233, #445566",
		Typography:   "Inter",
	}

	prompt, err := BuildSlidePrompt("Build a logistics platform for 40 warehouses.", 7, brand)
	if err != nil {
		t.Fatalf("BuildSlidePrompt() error = %v", err)
	}

	for _, want := range []string{
		"Create exactly 7 presentation slides",
		"Brand: Acme Corp",
		"Voice & Tone: Bold and direct",
		"Color Palette: #112233, #445566",
		"Typography: Inter",
		"Build a logistics platform for 40 warehouses.",
		"exactly 7 objects",
		`"slideNumber"`,
		`"contentType"`,
		`"layout"`,
		ConfidentialityMarker,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q", want)
		}
	}
}

func TestBuildSlidePromptDefaultBrand(t *testing.T) {
	prompt, err := BuildSlidePrompt("RFP body", 5, nil)
	if err != nil {
		t.Fatalf("BuildSlidePrompt() error = %v", err)
	}
	if !strings.Contains(prompt, "professional corporate styling") {
		t.Fatalf("expected default styling clause, got %q", prompt)
	}
	if strings.Contains(prompt, "Brand:") {
		t.Fatalf("did not expect brand fields without a brand guide")
	}
}

func TestBuildSlidePromptPlaceholderBrandIsPassedThrough(t *testing.T) {
	guide := &domain.BrandGuide{
		BrandName:    "Globex",
		ColorPalette: domain.PlaceholderColorPalette,
		Typography:   domain.PlaceholderTypography,
		VoiceTone:    domain.PlaceholderVoiceTone,
	}
	prompt, err := BuildSlidePrompt("RFP body", 3, guide.Guidance())
	if err != nil {
		t.Fatalf("BuildSlidePrompt() error = %v", err)
	}
	if !strings.Contains(prompt, domain.PlaceholderColorPalette) {
		t.Fatalf("expected placeholder palette in prompt")
	}
}

func TestBuildSlidePromptRejectsEmptyText(t *testing.T) {
	_, err := BuildSlidePrompt("   \n", 5, nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestBuildSlidePromptRejectsSlideCountOutOfRange(t *testing.T) {
	for _, count := range []int{0, 2, 16, -1} {
		if _, err := BuildSlidePrompt("RFP body", count, nil); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("slideCount %d: expected invalid input, got %v", count, err)
		}
	}
	for _, count := range []int{MinSlideCount, MaxSlideCount} {
		if _, err := BuildSlidePrompt("RFP body", count, nil); err != nil {
			t.Fatalf("slideCount %d: unexpected error %v", count, err)
		}
	}
}

func TestBuildSlidePromptTruncatesLongRFP(t *testing.T) {
	text := strings.Repeat("é", 50)
	prompt, err := BuildSlidePromptWithOptions(text, 5, nil, PromptOptions{MaxRFPChars: 10})
	if err != nil {
		t.Fatalf("BuildSlidePromptWithOptions() error = %v", err)
	}
	if !strings.Contains(prompt, strings.Repeat("é", 10)+truncationMarker) {
		t.Fatalf("expected rune-safe truncation with marker")
	}
	if strings.Contains(prompt, strings.Repeat("é", 11)) {
		t.Fatalf("expected text to be cut at 10 runes")
	}
}
