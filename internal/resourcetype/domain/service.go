package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]EnergyResourceType, error)
	Get(ctx context.Context, id string) (*EnergyResourceType, error)
	Create(ctx context.Context, req CreateRequest) (*EnergyResourceType, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*EnergyResourceType, error)
}

type ListRequest struct {
	Active *bool
	Name   string
}

type CreateRequest struct {
	Name   string `json:"name"`
	Unit   string `json:"unit"`
	Active *bool  `json:"is_active"`
}

type UpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Unit *string `json:"unit,omitempty"`
}

var (
	ErrInvalidID    = errors.New("invalid_resource_type_id")
	ErrNotFound     = errors.New("resource_type_not_found")
	ErrNameRequired = errors.New("resource_type_name_required")
	ErrUnitRequired = errors.New("resource_type_unit_required")
	ErrNameTaken    = errors.New("resource_type_name_taken")
	ErrInactive     = errors.New("resource_type_inactive")
)
