package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Meter is a physical counter installed at one location, measuring one
// resource type.
type Meter struct {
	ID                   snowflake.ID `json:"id" gorm:"primaryKey"`
	SerialNumber         string       `json:"serial_number" gorm:"type:text;not null;uniqueIndex"`
	LocationID           snowflake.ID `json:"location_id" gorm:"not null;index"`
	EnergyResourceTypeID snowflake.ID `json:"energy_resource_type_id" gorm:"not null;index"`
	IsActive             bool         `json:"is_active" gorm:"not null"`
	CreatedAt            time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Meter) TableName() string { return "meters" }
