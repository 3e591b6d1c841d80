package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EnergyResourceType is a billable resource kind (electricity, water, gas).
// One type serves many meters and tariffs.
type EnergyResourceType struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Unit      string       `json:"unit" gorm:"type:text;not null"`
	IsActive  bool         `json:"is_active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (EnergyResourceType) TableName() string { return "energy_resource_types" }
