package usecase

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

func TestParseSlidesCleanArray(t *testing.T) {
	slides, issues, err := ParseSlides(validSlidesJSON)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}

	if text, ok := slides[0].Content.Text(); !ok || text != "Confidential response" {
		t.Fatalf("unexpected text content: %q ok=%v", text, ok)
	}
	if bullets, ok := slides[1].Content.Bullets(); !ok || len(bullets) != 2 {
		t.Fatalf("unexpected bullets: %v ok=%v", bullets, ok)
	}
	chart, ok := slides[2].Content.Chart()
	if !ok || chart.ChartType != "bar" {
		t.Fatalf("unexpected chart content: %+v ok=%v", chart, ok)
	}
}

func TestParseSlidesExtractsWrappedArray(t *testing.T) {
	raw := "Sure! Here are your slides:\n```json\n" + validSlidesJSON + "\n```\nLet me know if you need changes."
	slides, _, err := ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	if slides[1].Title != "Summary" {
		t.Fatalf("unexpected second title %q", slides[1].Title)
	}
}

func TestParseSlidesIsStableOnItsOwnOutput(t *testing.T) {
	first, _, err := ParseSlides(validSlidesJSON)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	second, _, err := ParseSlides(string(encoded))
	if err != nil {
		t.Fatalf("second ParseSlides() error = %v", err)
	}
	reencoded, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(encoded) != string(reencoded) {
		t.Fatalf("expected identical output\nfirst:  %s\nsecond: %s", encoded, reencoded)
	}
}

func TestParseSlidesRejectsProse(t *testing.T) {
	_, _, err := ParseSlides("I'm sorry, I cannot help with that request.")
	if !domain.IsKind(err, domain.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
	if !errors.Is(err, ErrNoJSONArray) {
		t.Fatalf("expected no-array cause, got %v", err)
	}
}

func TestParseSlidesAcceptsEmptyArray(t *testing.T) {
	slides, issues, err := ParseSlides("[]")
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	if len(slides) != 0 || len(issues) != 0 {
		t.Fatalf("expected empty deck, got slides=%d issues=%+v", len(slides), issues)
	}
}

func TestParseSlidesRejectsBrokenJSON(t *testing.T) {
	_, _, err := ParseSlides(`[{"slideNumber": 1, "title": "x",}]`)
	if !domain.IsKind(err, domain.ErrMalformedOutput) {
		t.Fatalf("expected malformed output, got %v", err)
	}
}

func TestParseSlidesKeepsNonObjectElements(t *testing.T) {
	raw := `["just a string slide", {"slideNumber": 2, "title": "Real", "contentType": "text", "content": "x", "layout": "bullets"}, null]`
	slides, issues, err := ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected 3 slides, got %d", len(slides))
	}
	for _, idx := range []int{0, 2} {
		found := false
		for _, issue := range issues {
			if issue.Index == idx && issue.Message == "slide is not a JSON object" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected non-object issue for element %d in %+v", idx, issues)
		}
	}

	encoded, err := json.Marshal(slides)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `["just a string slide",{"slideNumber":2,"title":"Real","contentType":"text","content":"x","layout":"bullets"},null]`
	if string(encoded) != want {
		t.Fatalf("expected elements verbatim\nwant: %s\ngot:  %s", want, encoded)
	}
}

func TestParseSlidesReturnsElementsVerbatim(t *testing.T) {
	raw := `[
	  {"slideNumber": 1, "title": 42, "contentType": "text", "content": "Confidential", "layout": "title", "speakerHint": "x"},
	  {"slideNumber": 2.7, "title": "Two", "contentType": "text", "content": "y", "layout": "bullets"}
	]`
	slides, issues, err := ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}

	encoded, err := json.Marshal(slides)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"slideNumber":1,"title":42,"contentType":"text","content":"Confidential","layout":"title","speakerHint":"x"},` +
		`{"slideNumber":2.7,"title":"Two","contentType":"text","content":"y","layout":"bullets"}]`
	if string(encoded) != want {
		t.Fatalf("expected model output verbatim\nwant: %s\ngot:  %s", want, encoded)
	}

	if slides[0].Title != "" {
		t.Fatalf("expected non-string title to stay unread, got %q", slides[0].Title)
	}
	if slides[1].SlideNumber != 0 {
		t.Fatalf("expected fractional slideNumber to stay unread, got %d", slides[1].SlideNumber)
	}

	want2 := map[string]bool{"0:title": false, "1:slideNumber": false}
	for _, issue := range issues {
		key := issueKey(issue)
		if _, ok := want2[key]; ok {
			want2[key] = true
		}
	}
	for key, seen := range want2 {
		if !seen {
			t.Fatalf("expected issue %s in %+v", key, issues)
		}
	}
}

func TestParseSlidesReportsStructuralIssues(t *testing.T) {
	raw := `[
	  {"slideNumber": 1, "title": "Intro", "contentType": "text", "content": "Welcome", "layout": "title"},
	  {"slideNumber": "3", "title": "Odd", "contentType": "bullets", "content": "not a list", "layout": "hero"},
	  {"title": "Missing", "contentType": "video", "content": "x", "layout": "bullets"}
	]`
	slides, issues, err := ParseSlides(raw)
	if err != nil {
		t.Fatalf("ParseSlides() error = %v", err)
	}
	if len(slides) != 3 {
		t.Fatalf("expected all slides kept, got %d", len(slides))
	}
	if slides[1].SlideNumber != 0 {
		t.Fatalf("expected string slideNumber to stay unread, got %d", slides[1].SlideNumber)
	}
	encoded, err := json.Marshal(slides[1])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(encoded), `"slideNumber":"3"`) {
		t.Fatalf("expected string slideNumber kept verbatim, got %s", encoded)
	}

	want := map[string]bool{
		"0:":            false, // missing confidentiality marker
		"1:slideNumber": false,
		"1:content":     false,
		"1:layout":      false,
		"2:slideNumber": false,
		"2:contentType": false,
	}
	for _, issue := range issues {
		key := issueKey(issue)
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, seen := range want {
		if !seen {
			t.Fatalf("expected issue %s in %+v", key, issues)
		}
	}

	if slides[1].Layout.Normalize() != domain.LayoutDefault {
		t.Fatalf("expected unknown layout to normalize to default")
	}
	raw2, _ := json.Marshal(slides[1].Content)
	if string(raw2) != `"not a list"` {
		t.Fatalf("expected mismatched content kept verbatim, got %s", raw2)
	}
}

func issueKey(issue domain.SlideIssue) string {
	return string(rune('0'+issue.Index)) + ":" + issue.Field
}
