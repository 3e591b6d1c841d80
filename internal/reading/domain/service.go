package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]MeterReading, error)
	Get(ctx context.Context, id string) (*MeterReading, error)
	Create(ctx context.Context, req CreateRequest) (*MeterReading, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*MeterReading, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, req SummaryRequest) ([]SummaryRow, error)
}

type ListRequest struct {
	MeterTenantID string
	DateFrom      *time.Time
	DateTo        *time.Time
	Method        string
	ActNumber     string
	ExecutorName  string
}

// DistributionInput is one requested category row. Method and
// coefficients default to the reading's aggregate values when omitted.
type DistributionInput struct {
	Category         string           `json:"category"`
	CurrentReading   decimal.Decimal  `json:"current_reading"`
	PreviousReading  decimal.Decimal  `json:"previous_reading"`
	Method           *string          `json:"method,omitempty"`
	CalculationCoeff *decimal.Decimal `json:"calculation_coefficient,omitempty"`
	AreaPercentage   *decimal.Decimal `json:"area_percentage,omitempty"`
}

type CreateRequest struct {
	MeterTenantID        string              `json:"meter_tenant_id"`
	ReadingDate          time.Time           `json:"reading_date"`
	CurrentReading       decimal.Decimal     `json:"current_reading"`
	PreviousReading      *decimal.Decimal    `json:"previous_reading,omitempty"`
	Method               string              `json:"calculation_method"`
	CalculationCoeff     *decimal.Decimal    `json:"calculation_coefficient,omitempty"`
	EnergyCoeff          *decimal.Decimal    `json:"energy_consumption_coefficient,omitempty"`
	RentalArea           *decimal.Decimal    `json:"rental_area,omitempty"`
	AreaPercentage       *decimal.Decimal    `json:"total_rented_area_percentage,omitempty"`
	Notes                string              `json:"notes,omitempty"`
	ActNumber            string              `json:"act_number,omitempty"`
	ExecutorName         string              `json:"executor_name,omitempty"`
	TenantRepresentative string              `json:"tenant_representative,omitempty"`
	Distributions        []DistributionInput `json:"distributions,omitempty"`
	CreatedBy            string              `json:"-"`
}

type UpdateRequest struct {
	ReadingDate          *time.Time           `json:"reading_date,omitempty"`
	CurrentReading       *decimal.Decimal     `json:"current_reading,omitempty"`
	PreviousReading      *decimal.Decimal     `json:"previous_reading,omitempty"`
	Method               *string              `json:"calculation_method,omitempty"`
	CalculationCoeff     *decimal.Decimal     `json:"calculation_coefficient,omitempty"`
	EnergyCoeff          *decimal.Decimal     `json:"energy_consumption_coefficient,omitempty"`
	RentalArea           *decimal.Decimal     `json:"rental_area,omitempty"`
	AreaPercentage       *decimal.Decimal     `json:"total_rented_area_percentage,omitempty"`
	Notes                *string              `json:"notes,omitempty"`
	ActNumber            *string              `json:"act_number,omitempty"`
	ExecutorName         *string              `json:"executor_name,omitempty"`
	TenantRepresentative *string              `json:"tenant_representative,omitempty"`
	Distributions        *[]DistributionInput `json:"distributions,omitempty"`
	Version              int64                `json:"version"`
}

type SummaryRequest struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

// SummaryRow aggregates readings per resource type.
type SummaryRow struct {
	ResourceTypeID   int64           `json:"resource_type_id"`
	ResourceTypeName string          `json:"resource_type_name"`
	Unit             string          `json:"unit"`
	ReadingCount     int64           `json:"reading_count"`
	TotalConsumption decimal.Decimal `json:"total_consumption"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

var (
	ErrInvalidID          = errors.New("invalid_reading_id")
	ErrNotFound           = errors.New("reading_not_found")
	ErrAssignmentNotFound = errors.New("reading_assignment_not_found")
	ErrMeterNotLinked     = errors.New("reading_meter_not_linked")
	ErrInvalidCategory    = errors.New("invalid_distribution_category")
	ErrInvalidAreaWeight  = errors.New("area_weight_out_of_range")
	ErrVersionConflict    = errors.New("reading_version_conflict")
)
