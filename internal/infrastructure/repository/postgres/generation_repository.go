package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

type GenerationRepository struct {
	db *sql.DB
}

func NewGenerationRepository(db *sql.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) CreateGeneration(ctx context.Context, generation *domain.SlideGeneration) error {
	slidesJSON, err := json.Marshal(generation.Slides)
	if err != nil {
		return fmt.Errorf("marshal slides: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO slide_generations (id, rfp_filename, brand_guide_filename, slide_count, slides, status, generated_date)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		generation.ID, generation.RFPFilename, generation.BrandGuideFilename, generation.SlideCount,
		slidesJSON, string(generation.Status), generation.GeneratedDate,
	)
	if err != nil {
		return fmt.Errorf("insert slide generation: %w", err)
	}
	return nil
}

func (r *GenerationRepository) GetGeneration(ctx context.Context, id string) (*domain.SlideGeneration, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, rfp_filename, brand_guide_filename, slide_count, slides, status, generated_date
FROM slide_generations
WHERE id = $1
`, id)

	generation, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get generation", fmt.Errorf("generation %s", id))
		}
		return nil, err
	}
	return generation, nil
}

func (r *GenerationRepository) ListGenerations(ctx context.Context, limit int) ([]domain.SlideGeneration, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, rfp_filename, brand_guide_filename, slide_count, slides, status, generated_date
FROM slide_generations
ORDER BY generated_date DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query slide generations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SlideGeneration, 0, limit)
	for rows.Next() {
		generation, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *generation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slide generations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*domain.SlideGeneration, error) {
	var generation domain.SlideGeneration
	var slidesRaw []byte
	var status string
	err := row.Scan(
		&generation.ID, &generation.RFPFilename, &generation.BrandGuideFilename, &generation.SlideCount,
		&slidesRaw, &status, &generation.GeneratedDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan slide generation: %w", err)
	}
	if len(slidesRaw) > 0 {
		if err := json.Unmarshal(slidesRaw, &generation.Slides); err != nil {
			return nil, fmt.Errorf("unmarshal slides: %w", err)
		}
	}
	generation.Status = domain.GenerationStatus(status)
	return &generation, nil
}
