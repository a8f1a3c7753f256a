package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

// Extractor reads plain text and page count from PDF files on local disk.
type Extractor struct {
	maxTextBytes int64
}

func NewExtractor(maxTextBytes int64) *Extractor {
	return &Extractor{maxTextBytes: maxTextBytes}
}

func (e *Extractor) Extract(ctx context.Context, path string) (domain.ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedContent{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractedContent{}, fmt.Errorf("read pdf: %w", err)
	}

	text, numPages, err := e.extractText(path)
	if err != nil {
		return domain.ExtractedContent{}, domain.WrapError(domain.ErrExtractionFailed, "extract pdf text", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		slog.Debug("pdf_page_count_fallback", "path", path, "error", err)
		pages = numPages
	}

	return domain.ExtractedContent{
		Text:  normalizeText(text),
		Pages: pages,
	}, nil
}

// extractText converts parser panics on malformed input into errors.
func (e *Extractor) extractText(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages = reader.NumPage()
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", pages, fmt.Errorf("read pdf text: %w", err)
	}

	text, err = readLimited(plain, e.maxTextBytes)
	if err != nil {
		return "", pages, fmt.Errorf("read pdf text: %w", err)
	}
	return text, pages, nil
}

// readLimited reads at most limit bytes and drops a rune cut by the limit.
func readLimited(r io.Reader, limit int64) (string, error) {
	if limit <= 0 {
		raw, err := io.ReadAll(r)
		return string(raw), err
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) == limit {
		raw = trimPartialRune(raw)
	}
	return string(raw), nil
}

func trimPartialRune(b []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		start := len(b) - i
		if !utf8.RuneStart(b[start]) {
			continue
		}
		if !utf8.FullRune(b[start:]) {
			return b[:start]
		}
		break
	}
	return b
}

func normalizeText(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
