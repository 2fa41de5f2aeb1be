package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExtractionStatus enum constants
const (
	ExtractionPending    = "pending"
	ExtractionProcessing = "processing"
	ExtractionDone       = "done"
	ExtractionError      = "error"
)

// FileKind enum constants
const (
	FileKindDocument = "document"
	FileKindImage    = "image"
)

// Estimate represents one ingested vendor document. Only estimates with
// extraction status "done" are eligible for batch review.
type Estimate struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID        *uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Company          *Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	UploadedBy       *uuid.UUID `gorm:"type:uuid;index" json:"uploaded_by"`
	Uploader         *User      `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	FileRef          string     `gorm:"type:varchar(512);not null" json:"file_ref"`
	FileName         string     `gorm:"type:varchar(255);not null" json:"file_name"`
	FileKind         string     `gorm:"type:varchar(20);not null;default:'document'" json:"file_kind"` // document, image
	ExtractionStatus string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"extraction_status"`
	ExtractionErrMsg string     `gorm:"type:text" json:"extraction_error"`

	// Customer guess produced by the extraction engine, all nullable.
	OCRCustomerName  *string  `gorm:"type:varchar(255)" json:"ocr_customer_name"`
	OCRContactName   *string  `gorm:"type:varchar(255)" json:"ocr_contact_name"`
	OCRCustomerEmail *string  `gorm:"type:varchar(255)" json:"ocr_customer_email"`
	OCRCustomerPhone *string  `gorm:"type:varchar(50)" json:"ocr_customer_phone"`
	OCRConfidence    *float64 `json:"ocr_confidence"` // 0..1

	TotalPrice *decimal.Decimal `gorm:"type:decimal(18,4)" json:"total_price"`
	Items      []EstimateItem   `gorm:"foreignKey:EstimateID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// EstimateItem is one extracted line entry on an estimate.
type EstimateItem struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EstimateID uuid.UUID   `gorm:"type:uuid;not null;index" json:"estimate_id"`
	Label      string      `gorm:"type:varchar(255);not null" json:"label"`
	Code       string      `gorm:"type:varchar(100)" json:"code"` // vendor part code, kept verbatim
	Quantity   int         `gorm:"not null;default:1" json:"quantity"`
	SortOrder  int         `gorm:"not null;default:0" json:"sort_order"`
	Fields     []ItemField `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"fields,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ValueType enum constants
const (
	ValueTypeString = "string"
	ValueTypeNumber = "number"
	ValueTypeBool   = "bool"
	ValueTypeDate   = "date"
	ValueTypeCode   = "code"
)

// ItemField is one key/value attribute on a line item. Values are always
// stored as text; ValueType is advisory for rendering and validation only.
// FieldDefinitionID carries no FK constraint: deleting a definition leaves
// the reference dangling on purpose.
type ItemField struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	FieldDefinitionID *uuid.UUID `gorm:"type:uuid" json:"field_definition_id"`
	FieldKey          string     `gorm:"type:varchar(100);not null" json:"field_key"`
	Label             string     `gorm:"type:varchar(255);not null" json:"label"`
	FieldValue        string     `gorm:"type:text;not null" json:"field_value"`
	ValueType         string     `gorm:"type:varchar(20);not null;default:'string'" json:"value_type"`
	Confidence        *float64   `json:"confidence"` // 0..1, null = manually entered
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
