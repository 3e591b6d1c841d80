package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, r *MeterReading) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MeterReading, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]MeterReading, error)
	// FindLatestBefore returns the most recent reading of the assignment
	// dated strictly before date, excluding excludeID when non-zero.
	FindLatestBefore(ctx context.Context, db *gorm.DB, meterTenantID snowflake.ID, date time.Time, excludeID snowflake.ID) (*MeterReading, error)
	// UpdateVersioned applies fields iff the stored version matches; it
	// reports whether a row was touched.
	UpdateVersioned(ctx context.Context, db *gorm.DB, id snowflake.ID, version int64, fields map[string]any) (bool, error)
	// ReplaceDistributions drops the reading's distribution rows and
	// inserts rows in their place.
	ReplaceDistributions(ctx context.Context, db *gorm.DB, readingID snowflake.ID, rows []MeterReadingDistribution) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Summary(ctx context.Context, db *gorm.DB, req SummaryRequest) ([]SummaryRow, error)
}
