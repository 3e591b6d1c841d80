package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	Create(ctx context.Context, req CreateRequest) (*Tenant, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Tenant, error)
}

type ListRequest struct {
	Active *bool
	Name   string
}

type CreateRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Active        *bool  `json:"is_active"`
}

type UpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
}

var (
	ErrInvalidID    = errors.New("invalid_tenant_id")
	ErrNotFound     = errors.New("tenant_not_found")
	ErrNameRequired = errors.New("tenant_name_required")
	ErrNameTaken    = errors.New("tenant_name_taken")
	ErrInactive     = errors.New("tenant_inactive")
)
