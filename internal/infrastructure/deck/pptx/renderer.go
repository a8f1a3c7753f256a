package pptx

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	Extension   = ".pptx"

	slideWidth  = 12192000
	slideHeight = 6858000
)

var defaultColors = domain.BrandColors{
	Primary:    "1F3864",
	Secondary:  "2E75B6",
	Accent:     "ED7D31",
	Background: "FFFFFF",
	Text:       "222222",
}

// Renderer writes 16:9 Office Open XML presentations.
type Renderer struct {
	appName string
	now     func() time.Time
}

func NewRenderer(appName string) *Renderer {
	if appName == "" {
		appName = "rfp-slide-generator"
	}
	return &Renderer{appName: appName, now: time.Now}
}

func (r *Renderer) ContentType() string { return ContentType }

func (r *Renderer) Extension() string { return Extension }

func (r *Renderer) Render(ctx context.Context, deck domain.Deck, w io.Writer) error {
	if len(deck.Slides) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "render pptx", fmt.Errorf("deck has no slides"))
	}
	palette := resolveColors(deck.Colors)

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML(len(deck.Slides))},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", coreXML(deck.Title, r.appName, r.now().UTC())},
		{"docProps/app.xml", appXML(r.appName, len(deck.Slides))},
		{"ppt/presentation.xml", presentationXML(len(deck.Slides))},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(len(deck.Slides))},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML},
		{"ppt/slideLayouts/slideLayout1.xml", slideLayoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", slideLayoutRelsXML},
		{"ppt/theme/theme1.xml", themeXML(palette)},
	}
	for _, part := range parts {
		if err := writePart(zw, part.name, part.body); err != nil {
			return err
		}
	}

	for i, slide := range deck.Slides {
		if err := ctx.Err(); err != nil {
			return err
		}
		body := renderSlide(slide, palette)
		if err := writePart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", i+1), body); err != nil {
			return err
		}
		if err := writePart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), slideRelsXML); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close pptx archive: %w", err)
	}
	return nil
}

func writePart(zw *zip.Writer, name, body string) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create pptx part %s: %w", name, err)
	}
	if _, err := io.WriteString(f, body); err != nil {
		return fmt.Errorf("write pptx part %s: %w", name, err)
	}
	return nil
}

// resolveColors fills unset or invalid brand colors with the default palette.
func resolveColors(in domain.BrandColors) domain.BrandColors {
	return domain.BrandColors{
		Primary:    hexOr(in.Primary, defaultColors.Primary),
		Secondary:  hexOr(in.Secondary, defaultColors.Secondary),
		Accent:     hexOr(in.Accent, defaultColors.Accent),
		Background: hexOr(in.Background, defaultColors.Background),
		Text:       hexOr(in.Text, defaultColors.Text),
	}
}

func hexOr(value, fallback string) string {
	v := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 {
		return fallback
	}
	for _, c := range v {
		if !strings.ContainsRune("0123456789ABCDEF", c) {
			return fallback
		}
	}
	return v
}
