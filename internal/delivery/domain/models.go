package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// ResourceDelivery records a bulk delivery of a resource to a location,
// optionally tied to a specific meter. One delivery per (location,
// resource type, date).
type ResourceDelivery struct {
	ID                   snowflake.ID    `json:"id" gorm:"primaryKey"`
	LocationID           snowflake.ID    `json:"location_id" gorm:"not null;uniqueIndex:uniq_delivery_per_day"`
	MeterID              *snowflake.ID   `json:"meter_id,omitempty" gorm:"index"`
	EnergyResourceTypeID snowflake.ID    `json:"energy_resource_type_id" gorm:"not null;uniqueIndex:uniq_delivery_per_day"`
	DeliveryDate         time.Time       `json:"delivery_date" gorm:"type:date;not null;uniqueIndex:uniq_delivery_per_day"`
	Quantity             decimal.Decimal `json:"quantity" gorm:"type:numeric(12,4);not null"`
	Unit                 string          `json:"unit"`
	PricePerUnit         decimal.Decimal `json:"price_per_unit" gorm:"type:numeric(10,4);not null"`
	TotalCost            decimal.Decimal `json:"total_cost" gorm:"type:numeric(12,2);not null"`
	Supplier             string          `json:"supplier,omitempty"`
	CreatedAt            time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ResourceDelivery) TableName() string { return "resource_deliveries" }
