package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]ResourceDelivery, error)
	Get(ctx context.Context, id string) (*ResourceDelivery, error)
	Create(ctx context.Context, req CreateRequest) (*ResourceDelivery, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*ResourceDelivery, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	LocationID     string
	ResourceTypeID string
}

type CreateRequest struct {
	LocationID     string           `json:"location_id"`
	MeterID        *string          `json:"meter_id,omitempty"`
	ResourceTypeID string           `json:"energy_resource_type_id"`
	DeliveryDate   time.Time        `json:"delivery_date"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Unit           string           `json:"unit"`
	PricePerUnit   decimal.Decimal  `json:"price_per_unit"`
	TotalCost      *decimal.Decimal `json:"total_cost,omitempty"`
	Supplier       string           `json:"supplier,omitempty"`
}

type UpdateRequest struct {
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	Unit         *string          `json:"unit,omitempty"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"`
}

var (
	ErrInvalidID           = errors.New("invalid_delivery_id")
	ErrNotFound            = errors.New("delivery_not_found")
	ErrDuplicateDelivery   = errors.New("delivery_already_recorded")
	ErrNonPositiveQuantity = errors.New("delivery_quantity_not_positive")
)
