package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a customer directory entry. The review wizard only reads the
// directory and, on "create from guess", inserts new rows; everything else
// belongs to the customer CRUD screens.
type Company struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"type:varchar(255);not null;index" json:"name"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Notes         string         `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
