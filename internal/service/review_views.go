package service

import (
	"estimatehub/internal/model"

	"github.com/google/uuid"
)

// Confidence band labels for extracted values. Presentation only, never used
// for gating.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
	ConfidenceManual = "manual"
)

// ConfidenceBand buckets an extraction confidence for display: >=0.90 high,
// 0.70-0.89 medium, below that low. Nil means the value was typed in by hand.
func ConfidenceBand(confidence *float64) string {
	switch {
	case confidence == nil:
		return ConfidenceManual
	case *confidence >= 0.90:
		return ConfidenceHigh
	case *confidence >= 0.70:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// --- Session view DTOs ---

type FieldView struct {
	ID                string   `json:"id"`
	ItemID            string   `json:"item_id"`
	FieldDefinitionID *string  `json:"field_definition_id"`
	FieldKey          string   `json:"field_key"`
	Label             string   `json:"label"`
	FieldValue        string   `json:"field_value"`
	ValueType         string   `json:"value_type"`
	Confidence        *float64 `json:"confidence"`
	ConfidenceBand    string   `json:"confidence_band"`
}

type ItemView struct {
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	Code      string      `json:"code"`
	Quantity  int         `json:"quantity"`
	SortOrder int         `json:"sort_order"`
	Fields    []FieldView `json:"fields"`
}

type OCRGuessView struct {
	Name        *string  `json:"name"`
	ContactName *string  `json:"contact_name"`
	Email       *string  `json:"email"`
	Phone       *string  `json:"phone"`
	Confidence  *float64 `json:"confidence"`
}

type AssignmentView struct {
	Mode           string  `json:"mode"`
	CompanyID      *string `json:"company_id"`
	OCRMatchID     *string `json:"ocr_match_id"`
	OCRMatchName   string  `json:"ocr_match_name,omitempty"`
	BoundCompanyID *string `json:"bound_company_id"`
	NoCustomer     bool    `json:"no_customer"`
	CanProceed     bool    `json:"can_proceed"`
}

type DocumentView struct {
	EstimateID string         `json:"estimate_id"`
	FileName   string         `json:"file_name"`
	FileKind   string         `json:"file_kind"`
	OCRGuess   *OCRGuessView  `json:"ocr_guess"`
	Assignment AssignmentView `json:"assignment"`
	Completed  bool           `json:"completed"`
	TotalPrice *string        `json:"total_price"`
	Items      []ItemView     `json:"items"`
}

type SessionView struct {
	ID                   string         `json:"id"`
	CurrentDocumentIndex int            `json:"current_document_index"`
	CurrentStepIndex     int            `json:"current_step_index"`
	Completed            bool           `json:"completed"`
	Documents            []DocumentView `json:"documents"`
}

// --- Mappers ---

func uuidPtrToString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toFieldView(f model.ItemField) FieldView {
	return FieldView{
		ID:                f.ID.String(),
		ItemID:            f.ItemID.String(),
		FieldDefinitionID: uuidPtrToString(f.FieldDefinitionID),
		FieldKey:          f.FieldKey,
		Label:             f.Label,
		FieldValue:        f.FieldValue,
		ValueType:         f.ValueType,
		Confidence:        f.Confidence,
		ConfidenceBand:    ConfidenceBand(f.Confidence),
	}
}

func toItemView(item model.EstimateItem) ItemView {
	fields := make([]FieldView, 0, len(item.Fields))
	for _, f := range item.Fields {
		fields = append(fields, toFieldView(f))
	}
	return ItemView{
		ID:        item.ID.String(),
		Label:     item.Label,
		Code:      item.Code,
		Quantity:  item.Quantity,
		SortOrder: item.SortOrder,
		Fields:    fields,
	}
}

func toDocumentView(d *sessionDocument) DocumentView {
	est := d.estimate

	var guess *OCRGuessView
	if est.OCRCustomerName != nil || est.OCRContactName != nil || est.OCRCustomerEmail != nil || est.OCRCustomerPhone != nil {
		guess = &OCRGuessView{
			Name:        est.OCRCustomerName,
			ContactName: est.OCRContactName,
			Email:       est.OCRCustomerEmail,
			Phone:       est.OCRCustomerPhone,
			Confidence:  est.OCRConfidence,
		}
	}

	items := make([]ItemView, 0, len(est.Items))
	for _, item := range est.Items {
		items = append(items, toItemView(item))
	}

	var total *string
	if est.TotalPrice != nil {
		s := est.TotalPrice.StringFixed(2)
		total = &s
	}

	return DocumentView{
		EstimateID: est.ID.String(),
		FileName:   est.FileName,
		FileKind:   est.FileKind,
		OCRGuess:   guess,
		Assignment: AssignmentView{
			Mode:           d.assignment.mode,
			CompanyID:      uuidPtrToString(d.assignment.companyID),
			OCRMatchID:     uuidPtrToString(d.assignment.ocrMatchID),
			OCRMatchName:   d.assignment.ocrMatchName,
			BoundCompanyID: uuidPtrToString(d.assignment.boundCompanyID),
			NoCustomer:     d.assignment.noCustomer,
			CanProceed:     d.canProceed(),
		},
		Completed:  d.completed,
		TotalPrice: total,
		Items:      items,
	}
}

// toSessionView snapshots the whole session. Caller holds the session lock.
func toSessionView(s *reviewSession) SessionView {
	docs := make([]DocumentView, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, toDocumentView(d))
	}
	return SessionView{
		ID:                   s.id.String(),
		CurrentDocumentIndex: s.docIndex,
		CurrentStepIndex:     s.stepIndex,
		Completed:            s.completed,
		Documents:            docs,
	}
}
