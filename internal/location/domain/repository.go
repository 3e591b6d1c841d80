package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, loc *Location) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Location, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Location, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Location, error)
	Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
