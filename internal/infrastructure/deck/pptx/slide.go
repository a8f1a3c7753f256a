package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	marginX      = 609600
	contentWidth = slideWidth - 2*marginX
	headerY      = 381000
	headerHeight = 914400
	ruleY        = 1325880
	bodyY        = 1524000
	bodyHeight   = slideHeight - bodyY - 457200
	columnGap    = 304800
)

type rect struct {
	x, y, cx, cy int
}

type textStyle struct {
	size   int
	bold   bool
	color  string
	align  string
	anchor string
}

type paragraph struct {
	text   string
	bullet bool
}

// shapeTree accumulates drawing shapes; ids start at 2 because 1 is the group.
type shapeTree struct {
	buf    strings.Builder
	nextID int
}

func newShapeTree() *shapeTree {
	return &shapeTree{nextID: 2}
}

func (t *shapeTree) id() int {
	id := t.nextID
	t.nextID++
	return id
}

func (t *shapeTree) addRect(name string, r rect, fill string) {
	fmt.Fprintf(&t.buf,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`+
			`<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:ln><a:noFill/></a:ln></p:spPr></p:sp>`,
		t.id(), escape(name), xfrm(r), fill)
}

func (t *shapeTree) addText(name string, r rect, style textStyle, paragraphs []paragraph) {
	anchor := style.anchor
	if anchor == "" {
		anchor = "t"
	}
	fmt.Fprintf(&t.buf,
		`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
			`<p:spPr>%s<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`+
			`<p:txBody><a:bodyPr wrap="square" rtlCol="0" anchor="%s"><a:normAutofit/></a:bodyPr><a:lstStyle/>`,
		t.id(), escape(name), xfrm(r), anchor)
	if len(paragraphs) == 0 {
		paragraphs = []paragraph{{}}
	}
	for _, p := range paragraphs {
		t.buf.WriteString(`<a:p>`)
		t.buf.WriteString(paragraphProps(p, style))
		if p.text != "" {
			t.buf.WriteString(`<a:r>`)
			t.buf.WriteString(runProps(style))
			t.buf.WriteString(`<a:t>` + escape(p.text) + `</a:t></a:r>`)
		}
		t.buf.WriteString(`<a:endParaRPr lang="en-US" dirty="0"/></a:p>`)
	}
	t.buf.WriteString(`</p:txBody></p:sp>`)
}

func paragraphProps(p paragraph, style textStyle) string {
	var attrs string
	if style.align != "" {
		attrs = ` algn="` + style.align + `"`
	}
	if !p.bullet {
		return `<a:pPr` + attrs + `><a:buNone/></a:pPr>`
	}
	return `<a:pPr marL="342900" indent="-342900"` + attrs + `>` +
		`<a:buClr><a:srgbClr val="` + style.color + `"/></a:buClr><a:buFont typeface="Arial"/><a:buChar char="&#8226;"/></a:pPr>`
}

func runProps(style textStyle) string {
	bold := "0"
	if style.bold {
		bold = "1"
	}
	return fmt.Sprintf(`<a:rPr lang="en-US" sz="%d" b="%s" dirty="0"><a:solidFill><a:srgbClr val="%s"/></a:solidFill></a:rPr>`,
		style.size, bold, style.color)
}

func xfrm(r rect) string {
	return fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, r.x, r.y, r.cx, r.cy)
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(stripControl(s)))
	return b.String()
}

// stripControl drops characters XML 1.0 cannot carry.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0xFFFE || r == 0xFFFF {
			return -1
		}
		return r
	}, s)
}

func renderSlide(slide domain.Slide, c domain.BrandColors) string {
	tree := newShapeTree()
	background := c.Background

	switch slide.Layout.Normalize() {
	case domain.LayoutTitle:
		background = c.Primary
		titleSlide(tree, slide, c)
	case domain.LayoutTwoColumn:
		header(tree, slide.Title, c)
		twoColumnBody(tree, slide.Content, c)
	default:
		// Chart content is drawn as bars whatever the layout; other content falls back to text.
		header(tree, slide.Title, c)
		if chart, ok := slide.Content.Chart(); ok {
			chartBody(tree, chart, c)
		} else {
			textBody(tree, rect{marginX, bodyY, contentWidth, bodyHeight}, slide.Content, c)
		}
	}

	return xmlHeader +
		`<p:sld ` + pmlNamespaces + `>` +
		`<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="` + background + `"/></a:solidFill><a:effectLst/></p:bgPr></p:bg>` +
		`<p:spTree>` + groupShapeProps + tree.buf.String() + `</p:spTree></p:cSld>` +
		`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
		`</p:sld>`
}

func titleSlide(tree *shapeTree, slide domain.Slide, c domain.BrandColors) {
	tree.addText("Title", rect{marginX, 2057400, contentWidth, 1371600},
		textStyle{size: 4400, bold: true, color: c.Background, align: "ctr", anchor: "b"},
		[]paragraph{{text: slide.Title}})
	tree.addRect("Accent", rect{slideWidth/2 - 914400, 3566160, 1828800, 54864}, c.Accent)
	if subtitle := strings.TrimSpace(slide.Content.PlainText()); subtitle != "" {
		tree.addText("Subtitle", rect{marginX, 3749040, contentWidth, 1371600},
			textStyle{size: 2000, color: c.Background, align: "ctr"},
			plainParagraphs(subtitle))
	}
}

func header(tree *shapeTree, title string, c domain.BrandColors) {
	tree.addText("Title", rect{marginX, headerY, contentWidth, headerHeight},
		textStyle{size: 3200, bold: true, color: c.Primary, anchor: "b"},
		[]paragraph{{text: title}})
	tree.addRect("Rule", rect{marginX, ruleY, contentWidth, 45720}, c.Accent)
}

func textBody(tree *shapeTree, r rect, content domain.SlideContent, c domain.BrandColors) {
	style := textStyle{size: 2000, color: c.Text}
	tree.addText("Body", r, style, contentParagraphs(content))
}

func twoColumnBody(tree *shapeTree, content domain.SlideContent, c domain.BrandColors) {
	paragraphs := contentParagraphs(content)
	split := (len(paragraphs) + 1) / 2
	width := (contentWidth - columnGap) / 2
	style := textStyle{size: 1800, color: c.Text}

	tree.addText("Left Column", rect{marginX, bodyY, width, bodyHeight}, style, paragraphs[:split])
	tree.addRect("Divider", rect{marginX + width + columnGap/2 - 6350, bodyY, 12700, bodyHeight}, c.Secondary)
	tree.addText("Right Column", rect{marginX + width + columnGap, bodyY, width, bodyHeight}, style, paragraphs[split:])
}

func contentParagraphs(content domain.SlideContent) []paragraph {
	if items, ok := content.Bullets(); ok {
		out := make([]paragraph, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, paragraph{text: item, bullet: true})
			}
		}
		return out
	}
	return plainParagraphs(content.PlainText())
}

func plainParagraphs(text string) []paragraph {
	var out []paragraph
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, paragraph{text: line})
		}
	}
	return out
}
