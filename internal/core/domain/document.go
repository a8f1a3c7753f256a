package domain

import "time"

type DocumentType string

const (
	DocumentTypeRFP        DocumentType = "rfp"
	DocumentTypeBrandGuide DocumentType = "brand-guide"
)

// ParseDocumentType maps the upload form value onto a known type. Empty means rfp.
func ParseDocumentType(raw string) (DocumentType, bool) {
	switch DocumentType(raw) {
	case "", DocumentTypeRFP:
		return DocumentTypeRFP, true
	case DocumentTypeBrandGuide:
		return DocumentTypeBrandGuide, true
	default:
		return "", false
	}
}

type RFPDocument struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Filename      string    `json:"filename"`
	SavedFilename string    `json:"savedFilename"`
	UploadDate    time.Time `json:"uploadDate"`
	FilePath      string    `json:"filePath"`
	Pages         int       `json:"pages"`
}

type BrandGuide struct {
	ID           string    `json:"id"`
	BrandName    string    `json:"brandName"`
	Content      string    `json:"content"`
	Filename     string    `json:"filename"`
	ColorPalette string    `json:"colorPalette"`
	Typography   string    `json:"typography"`
	VoiceTone    string    `json:"voiceTone"`
	Pages        int       `json:"pages"`
	UploadDate   time.Time `json:"uploadDate"`
}

// Brand style fields are not extracted from the guide content yet; uploads carry these.
const (
	PlaceholderColorPalette = "Corporate blue primary with neutral gray accents"
	PlaceholderTypography   = "Clean sans-serif headings with readable sans-serif body text"
	PlaceholderVoiceTone    = "Professional, confident and client-focused"
)

// BrandGuidance is the subset of a brand guide the prompt needs.
type BrandGuidance struct {
	BrandName    string
	VoiceTone    string
	ColorPalette string
	Typography   string
}

func (b *BrandGuide) Guidance() *BrandGuidance {
	if b == nil {
		return nil
	}
	return &BrandGuidance{
		BrandName:    b.BrandName,
		VoiceTone:    b.VoiceTone,
		ColorPalette: b.ColorPalette,
		Typography:   b.Typography,
	}
}

// DocumentSummary is the listing projection of a stored document (no content).
type DocumentSummary struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	SavedFilename string    `json:"savedFilename,omitempty"`
	BrandName     string    `json:"brandName,omitempty"`
	Pages         int       `json:"pages"`
	UploadDate    time.Time `json:"uploadDate"`
}

type FileListing struct {
	RFPDocuments []DocumentSummary `json:"rfpDocuments"`
	BrandGuides  []DocumentSummary `json:"brandGuides"`
}

type ExtractedContent struct {
	Text  string
	Pages int
}

type UploadRequest struct {
	Filename     string
	MimeType     string
	DocumentType string
}

type UploadResult struct {
	Filename      string       `json:"filename"`
	SavedFilename string       `json:"savedFilename,omitempty"`
	DocumentType  DocumentType `json:"documentType"`
	Pages         int          `json:"pages"`
}
