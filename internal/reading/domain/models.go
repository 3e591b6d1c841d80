package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// MeterReading is one billing-relevant reading taken against a meter
// assignment, with the computed consumption and cost snapshot frozen at
// write time. Version guards concurrent updates.
type MeterReading struct {
	ID                   snowflake.ID     `json:"id" gorm:"primaryKey"`
	MeterTenantID        snowflake.ID     `json:"meter_tenant_id" gorm:"not null;index"`
	ReadingDate          time.Time        `json:"reading_date" gorm:"type:date;not null;index"`
	CurrentReading       decimal.Decimal  `json:"current_reading" gorm:"type:numeric(12,4);not null"`
	PreviousReading      decimal.Decimal  `json:"previous_reading" gorm:"type:numeric(12,4);not null"`
	Consumption          decimal.Decimal  `json:"consumption" gorm:"type:numeric(12,4);not null"`
	DirectConsumption    decimal.Decimal  `json:"direct_consumption" gorm:"type:numeric(12,4);not null"`
	AreaBasedConsumption decimal.Decimal  `json:"area_based_consumption" gorm:"type:numeric(12,4);not null"`
	TotalConsumption     decimal.Decimal  `json:"total_consumption" gorm:"type:numeric(12,4);not null"`
	UnitPrice            decimal.Decimal  `json:"unit_price" gorm:"type:numeric(10,4);not null"`
	TotalCost            decimal.Decimal  `json:"total_cost" gorm:"type:numeric(12,2);not null"`
	CalculationMethod    string           `json:"calculation_method" gorm:"not null"`
	CalculationCoeff     decimal.Decimal  `json:"calculation_coefficient" gorm:"column:calculation_coefficient;type:numeric(8,4);not null"`
	EnergyCoeff          decimal.Decimal  `json:"energy_consumption_coefficient" gorm:"column:energy_consumption_coefficient;type:numeric(8,4);not null"`
	RentalArea           *decimal.Decimal `json:"rental_area,omitempty" gorm:"type:numeric(10,2)"`
	AreaPercentage       decimal.Decimal  `json:"total_rented_area_percentage" gorm:"column:total_rented_area_percentage;type:numeric(5,2);not null"`
	Notes                string           `json:"notes,omitempty"`
	ActNumber            string           `json:"act_number,omitempty"`
	ExecutorName         string           `json:"executor_name,omitempty"`
	TenantRepresentative string           `json:"tenant_representative,omitempty"`
	Version              int64            `json:"version" gorm:"not null"`
	CreatedBy            string           `json:"created_by,omitempty"`
	CreatedAt            time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Distributions []MeterReadingDistribution `json:"distributions,omitempty" gorm:"foreignKey:MeterReadingID"`
}

func (MeterReading) TableName() string { return "meter_readings" }

// Category splits a reading's consumption across billing buckets.
type Category string

const (
	CategoryCommonArea  Category = "CA"
	CategoryCommonPower Category = "CP"
	CategoryGeneral     Category = "GR"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryCommonArea, CategoryCommonPower, CategoryGeneral:
		return Category(s), nil
	}
	return "", ErrInvalidCategory
}

// MeterReadingDistribution is one category row under a reading. Rows
// are replaced wholesale whenever the reading is recomputed.
type MeterReadingDistribution struct {
	ID               snowflake.ID    `json:"id" gorm:"primaryKey"`
	MeterReadingID   snowflake.ID    `json:"meter_reading_id" gorm:"not null;index"`
	Category         Category        `json:"category" gorm:"not null"`
	CurrentReading   decimal.Decimal `json:"current_reading" gorm:"type:numeric(12,4);not null"`
	PreviousReading  decimal.Decimal `json:"previous_reading" gorm:"type:numeric(12,4);not null"`
	Difference       decimal.Decimal `json:"difference" gorm:"type:numeric(12,4);not null"`
	CalculationCoeff decimal.Decimal `json:"calculation_coefficient" gorm:"column:calculation_coefficient;type:numeric(8,4);not null"`
	AreaPercentage   decimal.Decimal `json:"area_percentage" gorm:"type:numeric(5,2);not null"`
	ConsumedEnergy   decimal.Decimal `json:"consumed_energy" gorm:"type:numeric(12,4);not null"`
	Cost             decimal.Decimal `json:"cost" gorm:"type:numeric(12,2);not null"`
	CreatedAt        time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MeterReadingDistribution) TableName() string { return "meter_reading_distributions" }
