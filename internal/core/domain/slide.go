package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type ContentType string

const (
	ContentBullets ContentType = "bullets"
	ContentText    ContentType = "text"
	ContentChart   ContentType = "chart"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentBullets, ContentText, ContentChart:
		return true
	default:
		return false
	}
}

type Layout string

const (
	LayoutTitle     Layout = "title"
	LayoutBullets   Layout = "bullets"
	LayoutTwoColumn Layout = "twoColumn"
	LayoutChart     Layout = "chart"
	LayoutDefault   Layout = "default"
)

func (l Layout) Known() bool {
	switch l {
	case LayoutTitle, LayoutBullets, LayoutTwoColumn, LayoutChart:
		return true
	default:
		return false
	}
}

// Normalize maps unrecognized layouts onto the generic default layout.
func (l Layout) Normalize() Layout {
	if l.Known() {
		return l
	}
	return LayoutDefault
}

type ChartContent struct {
	ChartType string          `json:"chartType"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SlideContent is the content variant selected by a slide's ContentType.
// Content whose JSON shape disagrees with the declared type is kept verbatim
// in raw form and reports an empty Kind.
type SlideContent struct {
	kind    ContentType
	bullets []string
	text    string
	chart   *ChartContent
	raw     json.RawMessage
}

func BulletContent(items ...string) SlideContent {
	return SlideContent{kind: ContentBullets, bullets: append([]string{}, items...)}
}

func TextContent(text string) SlideContent {
	return SlideContent{kind: ContentText, text: text}
}

func NewChartContent(chart ChartContent) SlideContent {
	c := chart
	return SlideContent{kind: ContentChart, chart: &c}
}

func (c SlideContent) Kind() ContentType { return c.kind }

func (c SlideContent) Bullets() ([]string, bool) {
	if c.kind != ContentBullets {
		return nil, false
	}
	return c.bullets, true
}

func (c SlideContent) Text() (string, bool) {
	if c.kind != ContentText {
		return "", false
	}
	return c.text, true
}

func (c SlideContent) Chart() (ChartContent, bool) {
	if c.kind != ContentChart || c.chart == nil {
		return ChartContent{}, false
	}
	return *c.chart, true
}

func (c SlideContent) Raw() json.RawMessage { return c.raw }

// IsZero reports whether the slide carried no content at all.
func (c SlideContent) IsZero() bool {
	if c.kind != "" {
		return false
	}
	trimmed := bytes.TrimSpace(c.raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// PlainText flattens any variant into readable text.
func (c SlideContent) PlainText() string {
	switch c.kind {
	case ContentBullets:
		return strings.Join(c.bullets, "\n")
	case ContentText:
		return c.text
	case ContentChart:
		if c.chart == nil {
			return ""
		}
		return c.chart.ChartType + " chart"
	}
	if c.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.raw, &s); err == nil {
		return s
	}
	return string(c.raw)
}

func (c SlideContent) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(c.raw)) > 0 {
		return c.raw, nil
	}
	switch c.kind {
	case ContentBullets:
		if c.bullets == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(c.bullets)
	case ContentText:
		return json.Marshal(c.text)
	case ContentChart:
		return json.Marshal(c.chart)
	default:
		return []byte("null"), nil
	}
}

// DecodeSlideContent interprets raw JSON according to the declared content type.
func DecodeSlideContent(contentType ContentType, raw json.RawMessage) SlideContent {
	out := SlideContent{raw: append(json.RawMessage(nil), raw...)}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return out
	}

	switch contentType {
	case ContentBullets:
		var items []string
		if trimmed[0] == '[' && json.Unmarshal(trimmed, &items) == nil {
			out.kind = ContentBullets
			out.bullets = items
		}
	case ContentText:
		var text string
		if trimmed[0] == '"' && json.Unmarshal(trimmed, &text) == nil {
			out.kind = ContentText
			out.text = text
		}
	case ContentChart:
		var chart ChartContent
		if trimmed[0] == '{' && json.Unmarshal(trimmed, &chart) == nil {
			out.kind = ContentChart
			out.chart = &chart
		}
	}
	return out
}

// Slide is one element of a generated deck. A slide decoded from JSON keeps
// its source text and marshals back to it unchanged, so fields of the wrong
// type, unknown keys and non-object elements survive a round trip.
type Slide struct {
	SlideNumber int          `json:"slideNumber"`
	Title       string       `json:"title"`
	ContentType ContentType  `json:"contentType"`
	Content     SlideContent `json:"content"`
	Layout      Layout       `json:"layout"`
	Notes       string       `json:"notes,omitempty"`

	raw json.RawMessage
}

type slideFields Slide

// UnmarshalJSON never fails on valid JSON. Fields are read only when they
// have the expected JSON type; everything else is left zero and checked
// separately.
func (s *Slide) UnmarshalJSON(data []byte) error {
	*s = Slide{raw: append(json.RawMessage(nil), bytes.TrimSpace(data)...)}

	var fields map[string]json.RawMessage
	if json.Unmarshal(data, &fields) != nil || fields == nil {
		return nil
	}
	s.SlideNumber, _ = IntField(fields["slideNumber"])
	s.Title, _ = StringField(fields["title"])
	contentType, _ := StringField(fields["contentType"])
	s.ContentType = ContentType(contentType)
	layout, _ := StringField(fields["layout"])
	s.Layout = Layout(layout)
	s.Notes, _ = StringField(fields["notes"])
	s.Content = DecodeSlideContent(s.ContentType, fields["content"])
	return nil
}

func (s Slide) MarshalJSON() ([]byte, error) {
	if len(s.raw) > 0 {
		return s.raw, nil
	}
	return json.Marshal(slideFields(s))
}

// Raw returns the JSON the slide was decoded from, or nil for slides built in code.
func (s Slide) Raw() json.RawMessage { return s.raw }

// IsObject reports whether the slide came from a JSON object. Slides built
// in code always are.
func (s Slide) IsObject() bool {
	return len(s.raw) == 0 || s.raw[0] == '{'
}

// StringField reads a JSON string. ok is false for any other JSON type.
func StringField(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", false
	}
	return s, true
}

// IntField reads a JSON number with no fractional part. Strings holding
// digits are not numbers.
func IntField(raw json.RawMessage) (int, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(n.String(), 10, 0)
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return int(v), true
}
