package usecase

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

const (
	pdfMimeType     = "application/pdf"
	pdfMagic        = "%PDF-"
	rfpStoragePath  = "rfp"
	defaultMaxBytes = 10 << 20
)

type UploadOptions struct {
	StagingDir     string
	MaxUploadBytes int64
}

type UploadDocumentUseCase struct {
	docs      ports.DocumentStore
	extractor ports.ContentExtractor
	storage   ports.ObjectStorage
	opts      UploadOptions

	now   func() time.Time
	newID func() string
}

func NewUploadDocumentUseCase(
	docs ports.DocumentStore,
	extractor ports.ContentExtractor,
	storage ports.ObjectStorage,
	opts UploadOptions,
) *UploadDocumentUseCase {
	if opts.StagingDir == "" {
		opts.StagingDir = os.TempDir()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxBytes
	}
	return &UploadDocumentUseCase{
		docs:      docs,
		extractor: extractor,
		storage:   storage,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	req domain.UploadRequest,
	body io.Reader,
) (*domain.UploadResult, error) {
	docType, ok := domain.ParseDocumentType(strings.TrimSpace(req.DocumentType))
	if !ok {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"upload document",
			fmt.Errorf("documentType must be %q or %q", domain.DocumentTypeRFP, domain.DocumentTypeBrandGuide),
		)
	}

	reader := bufio.NewReader(body)
	if err := checkPDF(req, reader); err != nil {
		return nil, err
	}

	stagedPath, cleanup, err := uc.stage(reader)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	content, err := uc.extractor.Extract(ctx, stagedPath)
	if err != nil {
		if domain.IsKind(err, domain.ErrExtractionFailed) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrExtractionFailed, "extract document", err)
	}

	filename := filepath.Base(strings.TrimSpace(req.Filename))
	uploadDate := uc.now()

	switch docType {
	case domain.DocumentTypeBrandGuide:
		return uc.saveBrandGuide(ctx, filename, content, uploadDate)
	default:
		return uc.saveRFP(ctx, filename, stagedPath, content, uploadDate)
	}
}

func (uc *UploadDocumentUseCase) saveRFP(
	ctx context.Context,
	filename string,
	stagedPath string,
	content domain.ExtractedContent,
	uploadDate time.Time,
) (*domain.UploadResult, error) {
	if strings.TrimSpace(content.Text) == "" {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "extract document", errors.New("document contains no extractable text"))
	}

	savedFilename := fmt.Sprintf("%d-%s", uploadDate.UnixMilli(), sanitizeFilename(filename))
	storageKey := path.Join(rfpStoragePath, savedFilename)
	if err := uc.archive(ctx, stagedPath, storageKey); err != nil {
		return nil, err
	}

	doc := &domain.RFPDocument{
		ID:            uc.newID(),
		Content:       content.Text,
		Filename:      filename,
		SavedFilename: savedFilename,
		UploadDate:    uploadDate,
		FilePath:      storageKey,
		Pages:         content.Pages,
	}
	if err := uc.docs.CreateRFPDocument(ctx, doc); err != nil {
		uc.discard(ctx, storageKey)
		return nil, fmt.Errorf("create rfp document: %w", err)
	}

	slog.Info("document_uploaded",
		"document_type", domain.DocumentTypeRFP,
		"filename", filename,
		"saved_filename", savedFilename,
		"pages", content.Pages,
		"chars", len(content.Text),
	)
	return &domain.UploadResult{
		Filename:      filename,
		SavedFilename: savedFilename,
		DocumentType:  domain.DocumentTypeRFP,
		Pages:         content.Pages,
	}, nil
}

func (uc *UploadDocumentUseCase) saveBrandGuide(
	ctx context.Context,
	filename string,
	content domain.ExtractedContent,
	uploadDate time.Time,
) (*domain.UploadResult, error) {
	guide := &domain.BrandGuide{
		ID:           uc.newID(),
		BrandName:    brandNameFromFilename(filename),
		Content:      content.Text,
		Filename:     filename,
		ColorPalette: domain.PlaceholderColorPalette,
		Typography:   domain.PlaceholderTypography,
		VoiceTone:    domain.PlaceholderVoiceTone,
		Pages:        content.Pages,
		UploadDate:   uploadDate,
	}
	if err := uc.docs.CreateBrandGuide(ctx, guide); err != nil {
		return nil, fmt.Errorf("create brand guide: %w", err)
	}

	slog.Info("document_uploaded",
		"document_type", domain.DocumentTypeBrandGuide,
		"filename", filename,
		"brand_name", guide.BrandName,
		"pages", content.Pages,
	)
	return &domain.UploadResult{
		Filename:     filename,
		DocumentType: domain.DocumentTypeBrandGuide,
		Pages:        content.Pages,
	}, nil
}

// stage copies the upload into a temp file. cleanup removes it and is safe to call once.
func (uc *UploadDocumentUseCase) stage(body io.Reader) (string, func(), error) {
	if err := os.MkdirAll(uc.opts.StagingDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create staging dir: %w", err)
	}
	f, err := os.CreateTemp(uc.opts.StagingDir, "upload-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create staging file: %w", err)
	}
	stagedPath := f.Name()
	cleanup := func() {
		if err := os.Remove(stagedPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("staging_cleanup_failed", "path", stagedPath, "error", err)
		}
	}

	written, copyErr := io.Copy(f, io.LimitReader(body, uc.opts.MaxUploadBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("write staging file: %w", copyErr)
	}
	if closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("close staging file: %w", closeErr)
	}
	if written > uc.opts.MaxUploadBytes {
		cleanup()
		return "", nil, domain.WrapError(
			domain.ErrInvalidInput,
			"stage upload",
			fmt.Errorf("file exceeds %d bytes", uc.opts.MaxUploadBytes),
		)
	}
	return stagedPath, cleanup, nil
}

func (uc *UploadDocumentUseCase) archive(ctx context.Context, stagedPath, key string) error {
	if uc.storage == nil {
		return nil
	}
	f, err := os.Open(stagedPath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	if err := uc.storage.Save(ctx, key, f); err != nil {
		return fmt.Errorf("archive original document: %w", err)
	}
	return nil
}

// discard removes an archived original whose record was never written.
func (uc *UploadDocumentUseCase) discard(ctx context.Context, key string) {
	if uc.storage == nil {
		return
	}
	if err := uc.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		slog.Warn("archive_cleanup_failed", "key", key, "error", err)
	}
}

func checkPDF(req domain.UploadRequest, reader *bufio.Reader) error {
	declared := strings.EqualFold(filepath.Ext(req.Filename), ".pdf") ||
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(req.MimeType)), pdfMimeType)
	if !declared {
		return domain.WrapError(domain.ErrUnsupportedMedia, "upload document", fmt.Errorf("only PDF files are accepted: %s", req.Filename))
	}

	head, err := reader.Peek(len(pdfMagic))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return fmt.Errorf("read upload header: %w", err)
	}
	if !bytes.Equal(head, []byte(pdfMagic)) {
		return domain.WrapError(domain.ErrUnsupportedMedia, "upload document", fmt.Errorf("file is not a PDF document: %s", req.Filename))
	}
	return nil
}

func brandNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	name := strings.Join(strings.Fields(base), " ")
	if name == "" {
		return "Brand"
	}
	return name
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.pdf"
	}
	return base
}
