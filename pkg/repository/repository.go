// Package repository provides a small generic gorm store for reference
// entities that carry no special invariants.
package repository

import "context"

type Repository[T any] interface {
	Find(ctx context.Context, query *T, order string) ([]*T, error)
	FindOne(ctx context.Context, query *T) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID int64, resource any) error
	Delete(ctx context.Context, resourceID int64) error
	Count(ctx context.Context, query *T) (int64, error)
}
