package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, a *MeterTenant) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MeterTenant, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest, asOf time.Time) ([]MeterTenant, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// FindOverlapping returns an assignment of the same (meter, tenant)
	// pair whose interval overlaps [from, to] (to nil = open-ended),
	// excluding excludeID when non-zero.
	FindOverlapping(ctx context.Context, db *gorm.DB, meterID, tenantID snowflake.ID, from time.Time, to *time.Time, excludeID snowflake.ID) (*MeterTenant, error)
}
