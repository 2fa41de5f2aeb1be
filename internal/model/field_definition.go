package model

import (
	"time"

	"github.com/google/uuid"
)

// FieldDefinitionStatus enum constants
const (
	FieldDefPendingReview = "pending_review"
	FieldDefApproved      = "approved"
)

// FieldDefinition is one governed schema entry, keyed by field key. New keys
// discovered by the extraction engine enter as pending_review; only approved
// keys count as part of the trusted schema surface for future extractions.
// UsageCount is incremented by the extraction path, never by this service.
type FieldDefinition struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FieldKey    string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"field_key"`
	Label       string    `gorm:"type:varchar(255);not null" json:"label"`
	ValueType   string    `gorm:"type:varchar(20);not null;default:'string'" json:"value_type"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending_review';index" json:"status"`
	UsageCount  int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
