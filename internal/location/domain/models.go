package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Location is a billed site. OccupiedArea is the basis for
// area-proportional consumption.
type Location struct {
	ID           snowflake.ID     `json:"id" gorm:"primaryKey"`
	Name         string           `json:"name" gorm:"type:text;not null;uniqueIndex"`
	Address      string           `json:"address" gorm:"type:text"`
	OccupiedArea *decimal.Decimal `json:"occupied_area,omitempty" gorm:"type:numeric(10,2)"`
	TenantID     *snowflake.ID    `json:"tenant_id,omitempty" gorm:"index"`
	IsActive     bool             `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Location) TableName() string { return "locations" }
