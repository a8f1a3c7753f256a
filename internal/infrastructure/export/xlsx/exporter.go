package xlsx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	historySheet = "History"
	slidesSheet  = "Slides"
)

var (
	historyHeader = []any{"Generation ID", "RFP Filename", "Brand Guide", "Slide Count", "Status", "Generated At (UTC)"}
	slidesHeader  = []any{"Generation ID", "Slide", "Title", "Layout", "Content Type", "Content"}
)

// Exporter writes generation history as a two-sheet workbook: one row per
// generation and one row per slide.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ContentType() string { return ContentType }

func (e *Exporter) Export(ctx context.Context, generations []domain.SlideGeneration, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("rename history sheet: %w", err)
	}
	if _, err := f.NewSheet(slidesSheet); err != nil {
		return fmt.Errorf("create slides sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F3864"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	for _, sheet := range []struct {
		name   string
		header []any
		last   string
	}{
		{historySheet, historyHeader, "F1"},
		{slidesSheet, slidesHeader, "F1"},
	} {
		if err := f.SetSheetRow(sheet.name, "A1", &sheet.header); err != nil {
			return fmt.Errorf("write %s header: %w", sheet.name, err)
		}
		if err := f.SetCellStyle(sheet.name, "A1", sheet.last, headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", sheet.name, err)
		}
	}

	historyRow, slideRow := 2, 2
	for _, gen := range generations {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := []any{
			gen.ID,
			gen.RFPFilename,
			gen.BrandGuideFilename,
			gen.SlideCount,
			string(gen.Status),
			gen.GeneratedDate.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(historySheet, cell(historyRow), &row); err != nil {
			return fmt.Errorf("write history row: %w", err)
		}
		historyRow++

		for _, slide := range gen.Slides {
			row := []any{
				gen.ID,
				slide.SlideNumber,
				slide.Title,
				string(slide.Layout),
				string(slide.ContentType),
				strings.TrimSpace(slide.Content.PlainText()),
			}
			if err := f.SetSheetRow(slidesSheet, cell(slideRow), &row); err != nil {
				return fmt.Errorf("write slide row: %w", err)
			}
			slideRow++
		}
	}

	widths := map[string][]float64{
		historySheet: {38, 32, 28, 12, 12, 22},
		slidesSheet:  {38, 8, 40, 12, 14, 80},
	}
	for sheet, cols := range widths {
		for i, width := range cols {
			col, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return err
			}
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return fmt.Errorf("set %s column width: %w", sheet, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func cell(row int) string {
	return fmt.Sprintf("A%d", row)
}
