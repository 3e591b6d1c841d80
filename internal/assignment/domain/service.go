package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]MeterTenant, error)
	Get(ctx context.Context, id string) (*MeterTenant, error)
	Create(ctx context.Context, req CreateRequest) (*MeterTenant, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*MeterTenant, error)
	Delete(ctx context.Context, id string) error
}

type ListRequest struct {
	MeterID    string
	TenantID   string
	ActiveOnly bool
}

type CreateRequest struct {
	MeterID      string     `json:"meter_id"`
	TenantID     string     `json:"tenant_id"`
	AssignedFrom time.Time  `json:"assigned_from"`
	AssignedTo   *time.Time `json:"assigned_to"`
}

type UpdateRequest struct {
	MeterID      *string    `json:"meter_id,omitempty"`
	TenantID     *string    `json:"tenant_id,omitempty"`
	AssignedFrom *time.Time `json:"assigned_from,omitempty"`
	AssignedTo   *time.Time `json:"assigned_to,omitempty"`
	ClearEnd     bool       `json:"clear_end,omitempty"`
}

var (
	ErrInvalidID       = errors.New("invalid_assignment_id")
	ErrNotFound        = errors.New("assignment_not_found")
	ErrInvalidInterval = errors.New("assignment_invalid_interval")
	ErrOverlap         = errors.New("assignment_period_overlap")
)
