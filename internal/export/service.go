package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/claims-extractor/internal/repository"
)

// Service is a tiny façade over the document repository that produces XLSX
// bytes for reviewer triage.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportDocumentsXLSX returns a workbook with one row per extracted field
// across the given documents, so low-confidence values can be filtered and
// reviewed in bulk.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, ids []uuid.UUID) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Extractions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIndex, _ := f.GetSheetIndex("Sheet1"); defIndex != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{"Filename", "Form Type", "Field", "Value", "Confidence", "Source", "Saved At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, id := range ids {
		doc, err := s.docs.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load document %s: %w", id, err)
		}
		formType := ""
		if doc.FormType != nil {
			formType = *doc.FormType
		}
		for _, fv := range doc.Fields {
			value := ""
			if fv.Value != nil {
				value = *fv.Value
			}
			cells := []any{
				doc.Filename,
				formType,
				fv.Name,
				value,
				fv.Confidence,
				fv.Source,
				doc.CreatedAt.UTC().Format(time.RFC3339),
			}
			for i, v := range cells {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("export complete", "documents", len(ids), "rows", row-2, "duration_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}
