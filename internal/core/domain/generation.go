package domain

import "time"

// DefaultBrandGuide is recorded when a generation ran without brand guidance.
const DefaultBrandGuide = "Default"

type GenerationStatus string

const (
	GenerationCompleted GenerationStatus = "completed"
	GenerationFailed    GenerationStatus = "failed"
)

type SlideGeneration struct {
	ID                 string           `json:"id"`
	RFPFilename        string           `json:"rfpFilename"`
	BrandGuideFilename string           `json:"brandGuideFilename"`
	SlideCount         int              `json:"slideCount"`
	Slides             []Slide          `json:"slides"`
	GeneratedDate      time.Time        `json:"generatedDate"`
	Status             GenerationStatus `json:"status"`
}

type GenerateRequest struct {
	RFPFilename        string `json:"rfpFilename"`
	BrandGuideFilename string `json:"brandGuideFilename,omitempty"`
	SlideCount         int    `json:"slideCount,omitempty"`
}

// SlideIssue describes a structural problem in model output that was accepted as-is.
type SlideIssue struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type GenerationResult struct {
	GenerationID       string       `json:"generationId,omitempty"`
	RFPFilename        string       `json:"rfpFilename"`
	BrandGuideFilename string       `json:"brandGuideFilename"`
	SlideCount         int          `json:"slideCount"`
	Slides             []Slide      `json:"slides"`
	GeneratedAt        time.Time    `json:"generatedAt"`
	Issues             []SlideIssue `json:"issues,omitempty"`
}

// SlidesGeneratedEvent is published after a generation record is stored.
type SlidesGeneratedEvent struct {
	GenerationID string    `json:"generationId"`
	RFPFilename  string    `json:"rfpFilename"`
	SlideCount   int       `json:"slideCount"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

type BrandColors struct {
	Primary    string `json:"primary,omitempty"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

// Deck is the renderer input.
type Deck struct {
	Title  string
	Slides []Slide
	Colors BrandColors
}

type RenderRequest struct {
	Slides      []Slide      `json:"slides"`
	RFPFilename string       `json:"rfpFilename,omitempty"`
	BrandColors *BrandColors `json:"brandColors,omitempty"`
}
