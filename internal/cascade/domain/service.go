// Package domain defines the dependency cascade contract: one manager
// that reports, deactivates and deletes the subtree hanging off a
// referential parent (location, meter, tenant, resource type).
package domain

import (
	"context"
	"errors"
	"time"
)

// Kind names a parent entity the cascade can operate on.
type Kind string

const (
	KindLocation     Kind = "location"
	KindMeter        Kind = "meter"
	KindTenant       Kind = "tenant"
	KindResourceType Kind = "resource_type"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLocation, KindMeter, KindTenant, KindResourceType:
		return Kind(s), nil
	}
	return "", ErrInvalidKind
}

// Report lists live dependents per child label. Reading and delivery
// counts are unconditional; the rest count live rows only.
type Report struct {
	Kind   Kind             `json:"kind"`
	ID     int64            `json:"id"`
	Counts map[string]int64 `json:"counts"`
}

// Result summarizes how many rows each cascade step touched.
type Result struct {
	Kind     Kind             `json:"kind"`
	ID       int64            `json:"id"`
	Affected map[string]int64 `json:"affected"`
}

type Service interface {
	Dependencies(ctx context.Context, kind Kind, id string) (*Report, error)
	// Deactivate flips the parent and its live direct children as of the
	// given instant. Idempotent: a second call touches nothing.
	Deactivate(ctx context.Context, kind Kind, id string, asOf time.Time) (*Result, error)
	// Delete hard-removes the parent and its subtree leaf-first. The
	// parent must already be inactive.
	Delete(ctx context.Context, kind Kind, id string) (*Result, error)
}

var (
	ErrInvalidKind  = errors.New("invalid_cascade_kind")
	ErrInvalidID    = errors.New("invalid_cascade_id")
	ErrNotFound     = errors.New("cascade_parent_not_found")
	ErrActiveParent = errors.New("cascade_parent_still_active")
)
