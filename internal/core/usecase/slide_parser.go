package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

var (
	ErrNoJSONArray = errors.New("no json array region found")
	ErrInvalidJSON = errors.New("invalid json")
	ErrNotAnArray  = errors.New("json value is not an array")
)

// jsonArrayPattern matches from the leftmost "[" that opens an object through the last "]".
var jsonArrayPattern = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// ExtractJSONArray returns the bracketed array-of-objects region of a model response.
func ExtractJSONArray(raw string) (string, bool) {
	loc := jsonArrayPattern.FindStringIndex(raw)
	if loc == nil {
		return "", false
	}
	return raw[loc[0]:loc[1]], true
}

// ParseSlides turns free-form model output into slides. Each slide keeps the
// element's JSON verbatim; structural problems are reported as issues, never
// repaired or dropped. An empty array yields an empty deck.
func ParseSlides(raw string) ([]domain.Slide, []domain.SlideIssue, error) {
	elements, err := decodeSlideArray(raw)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrMalformedOutput, "parse slides", err)
	}

	slides := make([]domain.Slide, 0, len(elements))
	issues := make([]domain.SlideIssue, 0)
	for idx, element := range elements {
		var slide domain.Slide
		if err := json.Unmarshal(element, &slide); err != nil {
			return nil, nil, domain.WrapError(domain.ErrMalformedOutput, "parse slides", fmt.Errorf("element %d: %w", idx, err))
		}
		slides = append(slides, slide)

		var fields map[string]json.RawMessage
		if !slide.IsObject() || json.Unmarshal(element, &fields) != nil {
			issues = append(issues, domain.SlideIssue{Index: idx, Message: "slide is not a JSON object"})
			continue
		}
		issues = append(issues, validateSlide(idx, fields, slide)...)
	}
	issues = append(issues, validateDeck(slides)...)
	return slides, issues, nil
}

func decodeSlideArray(raw string) ([]json.RawMessage, error) {
	var regionErr error
	if region, ok := ExtractJSONArray(raw); ok {
		elements, err := decodeArray(region)
		if err == nil {
			return elements, nil
		}
		regionErr = err
	}

	elements, err := decodeArray(raw)
	if err != nil {
		if regionErr != nil {
			return nil, regionErr
		}
		if errors.Is(err, ErrInvalidJSON) {
			return nil, fmt.Errorf("%w: %w", ErrNoJSONArray, err)
		}
		return nil, err
	}
	return elements, nil
}

func decodeArray(text string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	var value json.RawMessage
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if len(value) == 0 || value[0] != '[' {
		return nil, ErrNotAnArray
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(value, &elements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return elements, nil
}

var requiredSlideFields = []string{"slideNumber", "title", "contentType", "content", "layout"}

var stringSlideFields = []string{"title", "contentType", "layout", "notes"}

func validateSlide(idx int, fields map[string]json.RawMessage, slide domain.Slide) []domain.SlideIssue {
	var issues []domain.SlideIssue
	present := make(map[string]bool, len(fields))
	for field, value := range fields {
		present[field] = !bytes.Equal(bytes.TrimSpace(value), []byte("null"))
	}
	for _, field := range requiredSlideFields {
		if !present[field] {
			issues = append(issues, domain.SlideIssue{Index: idx, Field: field, Message: "missing required field"})
		}
	}

	wrongType := make(map[string]bool)
	for _, field := range stringSlideFields {
		if !present[field] {
			continue
		}
		if _, ok := domain.StringField(fields[field]); !ok {
			wrongType[field] = true
			issues = append(issues, domain.SlideIssue{Index: idx, Field: field, Message: field + " must be a string"})
		}
	}
	if present["slideNumber"] {
		if n, ok := domain.IntField(fields["slideNumber"]); !ok || n <= 0 {
			issues = append(issues, domain.SlideIssue{Index: idx, Field: "slideNumber", Message: "slideNumber must be a positive integer"})
		}
	}

	if present["contentType"] && !wrongType["contentType"] && !slide.ContentType.Valid() {
		issues = append(issues, domain.SlideIssue{
			Index:   idx,
			Field:   "contentType",
			Message: fmt.Sprintf("unknown contentType %q", slide.ContentType),
		})
	}
	if slide.ContentType.Valid() && !slide.Content.IsZero() && slide.Content.Kind() != slide.ContentType {
		issues = append(issues, domain.SlideIssue{
			Index:   idx,
			Field:   "content",
			Message: fmt.Sprintf("content shape does not match contentType %q", slide.ContentType),
		})
	}
	if present["layout"] && !wrongType["layout"] && !slide.Layout.Known() {
		issues = append(issues, domain.SlideIssue{
			Index:   idx,
			Field:   "layout",
			Message: fmt.Sprintf("unrecognized layout %q, rendered with the default layout", slide.Layout),
		})
	}
	return issues
}

func validateDeck(slides []domain.Slide) []domain.SlideIssue {
	var issues []domain.SlideIssue
	for idx, slide := range slides {
		if slide.SlideNumber > 0 && slide.SlideNumber != idx+1 {
			issues = append(issues, domain.SlideIssue{
				Index:   idx,
				Field:   "slideNumber",
				Message: fmt.Sprintf("expected slideNumber %d, got %d", idx+1, slide.SlideNumber),
			})
		}
	}

	if len(slides) > 0 && slides[0].Layout == domain.LayoutTitle && !hasConfidentialityMarker(slides[0]) {
		issues = append(issues, domain.SlideIssue{
			Index:   0,
			Message: "title slide has no confidentiality marker",
		})
	}
	return issues
}

func hasConfidentialityMarker(slide domain.Slide) bool {
	marker := strings.ToLower(ConfidentialityMarker)
	for _, text := range []string{slide.Title, slide.Notes, slide.Content.PlainText()} {
		if strings.Contains(strings.ToLower(text), marker) {
			return true
		}
	}
	return false
}
