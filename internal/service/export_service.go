package service

import (
	"context"
	"fmt"
	"sort"

	"estimatehub/internal/model"
	"estimatehub/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ExportService produces XLSX workbooks of an estimate's line-item tree for
// handoff into quoting.
type ExportService interface {
	ExportEstimateXLSX(ctx context.Context, id string) ([]byte, string, error)
}

type exportService struct {
	estimateRepo repository.EstimateRepository
}

func NewExportService(estimateRepo repository.EstimateRepository) ExportService {
	return &exportService{estimateRepo: estimateRepo}
}

// ExportEstimateXLSX returns workbook bytes and a suggested file name. Field
// keys become columns: the union of keys across all items, sorted, after the
// fixed Label/Code/Quantity columns.
func (s *exportService) ExportEstimateXLSX(ctx context.Context, id string) ([]byte, string, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, "", fmt.Errorf("invalid estimate ID")
	}
	est, err := s.estimateRepo.FindByIDWithItems(ctx, uid)
	if err != nil {
		return nil, "", fmt.Errorf("estimate not found: %w", err)
	}

	keySet := map[string]string{} // key -> display label
	for _, item := range est.Items {
		for _, f := range item.Fields {
			if _, ok := keySet[f.FieldKey]; !ok {
				keySet[f.FieldKey] = f.Label
			}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := excelize.NewFile()
	const sheet = "Line Items"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Label", "Code", "Quantity"}
	for _, k := range keys {
		headers = append(headers, keySet[k])
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, item := range est.Items {
		values := map[string]string{}
		for _, fld := range item.Fields {
			values[fld.FieldKey] = fld.FieldValue
		}

		_ = setCell(f, sheet, 1, row, item.Label)
		_ = setCell(f, sheet, 2, row, item.Code)
		_ = setCell(f, sheet, 3, row, item.Quantity)
		for i, k := range keys {
			_ = setCell(f, sheet, 4+i, row, values[k])
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build workbook: %w", err)
	}
	return buf.Bytes(), exportFileName(est), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func exportFileName(est *model.Estimate) string {
	return fmt.Sprintf("estimate-%s-items.xlsx", est.ID.String()[:8])
}
