package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates documents and history tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS rfp_documents (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	saved_filename TEXT NOT NULL,
	content TEXT NOT NULL,
	file_path TEXT NOT NULL DEFAULT '',
	pages INTEGER NOT NULL DEFAULT 0,
	upload_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rfp_documents_filename ON rfp_documents(filename);
CREATE INDEX IF NOT EXISTS idx_rfp_documents_saved_filename ON rfp_documents(saved_filename);

CREATE TABLE IF NOT EXISTS brand_guides (
	id TEXT PRIMARY KEY,
	brand_name TEXT NOT NULL,
	filename TEXT NOT NULL,
	content TEXT NOT NULL DEFAULT '',
	color_palette TEXT NOT NULL DEFAULT '',
	typography TEXT NOT NULL DEFAULT '',
	voice_tone TEXT NOT NULL DEFAULT '',
	pages INTEGER NOT NULL DEFAULT 0,
	upload_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_brand_guides_filename ON brand_guides(filename);

CREATE TABLE IF NOT EXISTS slide_generations (
	id TEXT PRIMARY KEY,
	rfp_filename TEXT NOT NULL,
	brand_guide_filename TEXT NOT NULL,
	slide_count INTEGER NOT NULL,
	slides JSONB NOT NULL DEFAULT '[]'::jsonb,
	status TEXT NOT NULL,
	generated_date TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_slide_generations_generated_date ON slide_generations(generated_date DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) CreateRFPDocument(ctx context.Context, doc *domain.RFPDocument) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO rfp_documents (id, filename, saved_filename, content, file_path, pages, upload_date)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		doc.ID, doc.Filename, doc.SavedFilename, doc.Content, doc.FilePath, doc.Pages, doc.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("insert rfp document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FindRFPDocument(ctx context.Context, filename string) (*domain.RFPDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, saved_filename, content, file_path, pages, upload_date
FROM rfp_documents
WHERE filename = $1 OR saved_filename = $1
ORDER BY upload_date DESC
LIMIT 1
`, filename)

	var doc domain.RFPDocument
	err := row.Scan(&doc.ID, &doc.Filename, &doc.SavedFilename, &doc.Content, &doc.FilePath, &doc.Pages, &doc.UploadDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "find rfp document", fmt.Errorf("rfp document %q", filename))
		}
		return nil, fmt.Errorf("scan rfp document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) ListRFPDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, saved_filename, pages, upload_date
FROM rfp_documents
ORDER BY upload_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query rfp documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentSummary, 0)
	for rows.Next() {
		var item domain.DocumentSummary
		if err := rows.Scan(&item.ID, &item.Filename, &item.SavedFilename, &item.Pages, &item.UploadDate); err != nil {
			return nil, fmt.Errorf("scan rfp document: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rfp documents: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) CreateBrandGuide(ctx context.Context, guide *domain.BrandGuide) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO brand_guides (id, brand_name, filename, content, color_palette, typography, voice_tone, pages, upload_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		guide.ID, guide.BrandName, guide.Filename, guide.Content, guide.ColorPalette,
		guide.Typography, guide.VoiceTone, guide.Pages, guide.UploadDate,
	)
	if err != nil {
		return fmt.Errorf("insert brand guide: %w", err)
	}
	return nil
}

func (r *DocumentRepository) FindBrandGuide(ctx context.Context, filename string) (*domain.BrandGuide, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, brand_name, filename, content, color_palette, typography, voice_tone, pages, upload_date
FROM brand_guides
WHERE filename = $1
ORDER BY upload_date DESC
LIMIT 1
`, filename)

	var guide domain.BrandGuide
	err := row.Scan(
		&guide.ID, &guide.BrandName, &guide.Filename, &guide.Content, &guide.ColorPalette,
		&guide.Typography, &guide.VoiceTone, &guide.Pages, &guide.UploadDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "find brand guide", fmt.Errorf("brand guide %q", filename))
		}
		return nil, fmt.Errorf("scan brand guide: %w", err)
	}
	return &guide, nil
}

func (r *DocumentRepository) ListBrandGuides(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, brand_name, pages, upload_date
FROM brand_guides
ORDER BY upload_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query brand guides: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DocumentSummary, 0)
	for rows.Next() {
		var item domain.DocumentSummary
		if err := rows.Scan(&item.ID, &item.Filename, &item.BrandName, &item.Pages, &item.UploadDate); err != nil {
			return nil, fmt.Errorf("scan brand guide: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate brand guides: %w", err)
	}
	return out, nil
}
