package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// ProductLister is the read port the exporter needs.
type ProductLister interface {
	List(ctx context.Context) ([]*entity.ProductRecord, error)
}

// Service produces XLSX bytes for catalog exports.
type Service struct {
	products ProductLister
	logger   *slog.Logger
}

func NewService(products ProductLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{products: products, logger: logger}
}

// ExportCatalogXLSX returns an XLSX workbook (as bytes) with one row per
// product record, ordered by brand then name.
func (s *Service) ExportCatalogXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	recs, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Catalog"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Brand",
		"Name",
		"Product Type",
		"Sub Type",
		"Price",
		"Sources",
		"First Seen",
		"Last Seen",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, rec := range recs {
		values := []any{
			rec.Brand,
			rec.Name,
			rec.ProductType,
			rec.SubType,
			priceCell(rec.Price),
			sourcesCell(rec.SourceRefs),
			rec.CreatedAt.UTC().Format("2006-01-02"),
			rec.UpdatedAt.UTC().Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// readable column widths for the name-ish columns
	_ = f.SetColWidth(sheet, "A", "B", 28)
	_ = f.SetColWidth(sheet, "F", "F", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.catalog.ok",
		"products", len(recs),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func priceCell(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func sourcesCell(refs []entity.SourceRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.FileName)
	}
	return strings.Join(names, ", ")
}
