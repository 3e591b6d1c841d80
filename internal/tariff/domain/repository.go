package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, t *Tariff) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Tariff, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Tariff, error)
	// FindApplicable returns the tariff covering onDate for the
	// (location, resource type) pair: latest valid_from wins, ties broken
	// by latest created_at then highest id. Nil when none covers the date.
	FindApplicable(ctx context.Context, db *gorm.DB, locationID, resourceTypeID snowflake.ID, onDate time.Time) (*Tariff, error)
	// FindOverlapping returns a tariff of the same (location, resource
	// type) pair whose interval overlaps [from, to], excluding excludeID
	// when non-zero.
	FindOverlapping(ctx context.Context, db *gorm.DB, locationID, resourceTypeID snowflake.ID, from time.Time, to *time.Time, excludeID snowflake.ID) (*Tariff, error)
	// UpdateVersioned applies fields iff the stored version matches; it
	// reports whether a row was touched.
	UpdateVersioned(ctx context.Context, db *gorm.DB, id snowflake.ID, version int64, fields map[string]any) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
