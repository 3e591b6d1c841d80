package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Location, error)
	Get(ctx context.Context, id string) (*Location, error)
	Create(ctx context.Context, req CreateRequest) (*Location, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Location, error)
	AssignTenant(ctx context.Context, locationID, tenantID string) (*Location, error)
	UnassignTenant(ctx context.Context, locationID string) (*Location, error)
}

type ListRequest struct {
	Active *bool
	Name   string
}

type CreateRequest struct {
	Name         string           `json:"name"`
	Address      string           `json:"address"`
	OccupiedArea *decimal.Decimal `json:"occupied_area"`
	Active       *bool            `json:"is_active"`
}

type UpdateRequest struct {
	Name         *string          `json:"name,omitempty"`
	Address      *string          `json:"address,omitempty"`
	OccupiedArea *decimal.Decimal `json:"occupied_area,omitempty"`
}

var (
	ErrInvalidID    = errors.New("invalid_location_id")
	ErrNotFound     = errors.New("location_not_found")
	ErrNameRequired = errors.New("location_name_required")
	ErrNameTaken    = errors.New("location_name_taken")
	ErrInactive     = errors.New("location_inactive")
	ErrNegativeArea = errors.New("location_negative_area")
)
