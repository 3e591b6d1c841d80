package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Meter, error)
	Get(ctx context.Context, id string) (*Meter, error)
	Create(ctx context.Context, req CreateRequest) (*Meter, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Meter, error)
}

type ListRequest struct {
	Active         *bool
	SerialNumber   string
	LocationID     string
	ResourceTypeID string
}

type CreateRequest struct {
	SerialNumber   string `json:"serial_number"`
	LocationID     string `json:"location_id"`
	ResourceTypeID string `json:"energy_resource_type_id"`
	Active         *bool  `json:"is_active"`
}

type UpdateRequest struct {
	SerialNumber   *string `json:"serial_number,omitempty"`
	LocationID     *string `json:"location_id,omitempty"`
	ResourceTypeID *string `json:"energy_resource_type_id,omitempty"`
}

var (
	ErrInvalidID      = errors.New("invalid_meter_id")
	ErrNotFound       = errors.New("meter_not_found")
	ErrSerialRequired = errors.New("meter_serial_required")
	ErrSerialTaken    = errors.New("meter_serial_taken")
	ErrInactive       = errors.New("meter_inactive")
)
