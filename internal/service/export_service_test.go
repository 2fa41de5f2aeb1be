package service_test

import (
	"bytes"
	"context"
	"testing"

	"estimatehub/internal/model"
	"estimatehub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportEstimateXLSX(t *testing.T) {
	store := newFakeStore()
	est := newDoneEstimate("")
	est.Items[0].Fields = append(est.Items[0].Fields, model.ItemField{
		ID:         uuid.New(),
		ItemID:     est.Items[0].ID,
		FieldKey:   "unit_price",
		Label:      "Unit Price",
		FieldValue: "412.00",
		ValueType:  model.ValueTypeNumber,
	})
	second := model.EstimateItem{
		ID:         uuid.New(),
		EstimateID: est.ID,
		Label:      "Door 3070",
		Code:       "D-3070",
		Quantity:   1,
		SortOrder:  1,
		Fields: []model.ItemField{{
			ID:         uuid.New(),
			ItemID:     uuid.New(),
			FieldKey:   "finish",
			Label:      "Finish",
			FieldValue: "primed",
			ValueType:  model.ValueTypeString,
		}},
	}
	est.Items = append(est.Items, second)
	store.addEstimate(est)

	svc := service.NewExportService(&fakeEstimateRepo{store})
	data, name, err := svc.ExportEstimateXLSX(context.Background(), est.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "estimate-"+est.ID.String()[:8]+"-items.xlsx", name)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	const sheet = "Line Items"
	rows, err := wb.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Fixed columns first, then the union of field keys in sorted key order.
	assert.Equal(t, []string{"Label", "Code", "Quantity", "Finish", "Gauge", "Unit Price"}, rows[0])
	assert.Equal(t, []string{"Frame 3070", "F-3070", "2", "", "18 GA", "412.00"}, rows[1])
	assert.Equal(t, []string{"Door 3070", "D-3070", "1", "primed"}, rows[2])
}

func TestExportUnknownEstimate(t *testing.T) {
	svc := service.NewExportService(&fakeEstimateRepo{newFakeStore()})

	_, _, err := svc.ExportEstimateXLSX(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, _, err = svc.ExportEstimateXLSX(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid estimate ID")
}
