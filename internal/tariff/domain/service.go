package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Tariff, error)
	Get(ctx context.Context, id string) (*Tariff, error)
	Create(ctx context.Context, req CreateRequest) (*Tariff, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Tariff, error)
	Delete(ctx context.Context, id string) error
	// Resolve picks the tariff applicable to the pair on the given date.
	Resolve(ctx context.Context, req ResolveRequest) (*Tariff, error)
}

type ListRequest struct {
	LocationID     string
	ResourceTypeID string
}

type CreateRequest struct {
	LocationID     string          `json:"location_id"`
	ResourceTypeID string          `json:"energy_resource_type_id"`
	Price          decimal.Decimal `json:"price"`
	ValidFrom      time.Time       `json:"valid_from"`
	ValidTo        *time.Time      `json:"valid_to"`
}

type UpdateRequest struct {
	Price     *decimal.Decimal `json:"price,omitempty"`
	ValidFrom *time.Time       `json:"valid_from,omitempty"`
	ValidTo   *time.Time       `json:"valid_to,omitempty"`
	ClearEnd  bool             `json:"clear_end,omitempty"`
	Version   int64            `json:"version"`
}

type ResolveRequest struct {
	LocationID     string
	ResourceTypeID string
	OnDate         time.Time
}

var (
	ErrInvalidID          = errors.New("invalid_tariff_id")
	ErrNotFound           = errors.New("tariff_not_found")
	ErrNoApplicableTariff = errors.New("no_applicable_tariff")
	ErrOverlappingPeriod  = errors.New("tariff_period_overlap")
	ErrInvalidInterval    = errors.New("tariff_invalid_interval")
	ErrNonPositivePrice   = errors.New("tariff_price_not_positive")
	ErrVersionConflict    = errors.New("tariff_version_conflict")
)
