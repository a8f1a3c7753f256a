package pptx

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	nsA = `http://schemas.openxmlformats.org/drawingml/2006/main`
	nsR = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`
	nsP = `http://schemas.openxmlformats.org/presentationml/2006/main`

	relPackage = `http://schemas.openxmlformats.org/package/2006/relationships`
	relOffice  = `http://schemas.openxmlformats.org/officeDocument/2006/relationships`

	pmlNamespaces = `xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"`

	groupShapeProps = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`
)

func contentTypesXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

const rootRelsXML = xmlHeader +
	`<Relationships xmlns="` + relPackage + `">` +
	`<Relationship Id="rId1" Type="` + relOffice + `/officeDocument" Target="ppt/presentation.xml"/>` +
	`<Relationship Id="rId2" Type="` + relPackage + `/metadata/core-properties" Target="docProps/core.xml"/>` +
	`<Relationship Id="rId3" Type="` + relOffice + `/extended-properties" Target="docProps/app.xml"/>` +
	`</Relationships>`

func coreXML(title, creator string, created time.Time) string {
	stamp := created.Format(time.RFC3339)
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(title) + `</dc:title>` +
		`<dc:creator>` + escape(creator) + `</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + stamp + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appXML(appName string, slides int) string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Application>` + escape(appName) + `</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, slides) +
		`</Properties>`
}

// Relationship ids: rId1 master, rId2 theme, rId3.. slides.
func presentationXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation ` + pmlNamespaces + ` saveSubsetFonts="1">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+3)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/>`, slideWidth, slideHeight)
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRelsXML(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="` + relPackage + `">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relOffice + `/slideMaster" Target="slideMasters/slideMaster1.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="` + relOffice + `/theme" Target="theme/theme1.xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="`+relOffice+`/slide" Target="slides/slide%d.xml"/>`, i+2, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const slideMasterXML = xmlHeader +
	`<p:sldMaster ` + pmlNamespaces + `>` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + groupShapeProps + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
	`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideMasterRelsXML = xmlHeader +
	`<Relationships xmlns="` + relPackage + `">` +
	`<Relationship Id="rId1" Type="` + relOffice + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="` + relOffice + `/theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayoutXML = xmlHeader +
	`<p:sldLayout ` + pmlNamespaces + ` type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupShapeProps + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

const slideLayoutRelsXML = xmlHeader +
	`<Relationships xmlns="` + relPackage + `">` +
	`<Relationship Id="rId1" Type="` + relOffice + `/slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const slideRelsXML = xmlHeader +
	`<Relationships xmlns="` + relPackage + `">` +
	`<Relationship Id="rId1" Type="` + relOffice + `/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

func themeXML(c domain.BrandColors) string {
	color := func(tag, val string) string {
		return `<a:` + tag + `><a:srgbClr val="` + val + `"/></a:` + tag + `>`
	}
	font := `<a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/>`
	solid := `<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`
	line := `<a:ln w="9525">` + solid + `</a:ln>`
	effect := `<a:effectStyle><a:effectLst/></a:effectStyle>`

	return xmlHeader +
		`<a:theme xmlns:a="` + nsA + `" name="Proposal">` +
		`<a:themeElements>` +
		`<a:clrScheme name="Proposal">` +
		color("dk1", c.Text) + color("lt1", c.Background) + color("dk2", c.Primary) + color("lt2", "E7E6E6") +
		color("accent1", c.Primary) + color("accent2", c.Secondary) + color("accent3", c.Accent) +
		color("accent4", "A5A5A5") + color("accent5", "5B9BD5") + color("accent6", "70AD47") +
		color("hlink", c.Secondary) + color("folHlink", "954F72") +
		`</a:clrScheme>` +
		`<a:fontScheme name="Proposal"><a:majorFont>` + font + `</a:majorFont><a:minorFont>` + font + `</a:minorFont></a:fontScheme>` +
		`<a:fmtScheme name="Proposal">` +
		`<a:fillStyleLst>` + strings.Repeat(solid, 3) + `</a:fillStyleLst>` +
		`<a:lnStyleLst>` + strings.Repeat(line, 3) + `</a:lnStyleLst>` +
		`<a:effectStyleLst>` + strings.Repeat(effect, 3) + `</a:effectStyleLst>` +
		`<a:bgFillStyleLst>` + strings.Repeat(solid, 3) + `</a:bgFillStyleLst>` +
		`</a:fmtScheme>` +
		`</a:themeElements>` +
		`</a:theme>`
}
