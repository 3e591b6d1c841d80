package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tariff prices one resource type at one location over a validity
// interval. A nil ValidTo keeps the tariff open-ended. Version guards
// concurrent updates.
type Tariff struct {
	ID                   snowflake.ID    `json:"id" gorm:"primaryKey"`
	LocationID           snowflake.ID    `json:"location_id" gorm:"not null;index"`
	EnergyResourceTypeID snowflake.ID    `json:"energy_resource_type_id" gorm:"not null;index"`
	Price                decimal.Decimal `json:"price" gorm:"type:numeric(10,4);not null"`
	ValidFrom            time.Time       `json:"valid_from" gorm:"type:date;not null"`
	ValidTo              *time.Time      `json:"valid_to,omitempty" gorm:"type:date"`
	Version              int64           `json:"version" gorm:"not null"`
	CreatedAt            time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Tariff) TableName() string { return "tariffs" }

// CoversDate reports whether the tariff's validity interval contains d.
func (t Tariff) CoversDate(d time.Time) bool {
	if t.ValidFrom.After(d) {
		return false
	}
	return t.ValidTo == nil || !t.ValidTo.Before(d)
}
