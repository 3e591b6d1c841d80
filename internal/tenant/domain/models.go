package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant occupies zero or more locations and is billed through meter
// assignments.
type Tenant struct {
	ID            snowflake.ID `json:"id" gorm:"primaryKey"`
	Name          string       `json:"name" gorm:"type:text;not null;uniqueIndex"`
	ContactPerson string       `json:"contact_person" gorm:"type:text"`
	Phone         string       `json:"phone" gorm:"type:text"`
	Email         string       `json:"email" gorm:"type:text"`
	IsActive      bool         `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tenant) TableName() string { return "tenants" }
