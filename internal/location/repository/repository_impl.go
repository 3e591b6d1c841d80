package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() locationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, loc *locationdomain.Location) error {
	return db.WithContext(ctx).Create(loc).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*locationdomain.Location, error) {
	var loc locationdomain.Location
	err := db.WithContext(ctx).First(&loc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*locationdomain.Location, error) {
	var loc locationdomain.Location
	err := db.WithContext(ctx).First(&loc, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req locationdomain.ListRequest) ([]locationdomain.Location, error) {
	stmt := db.WithContext(ctx).Model(&locationdomain.Location{})
	if req.Active != nil {
		stmt = stmt.Where("is_active = ?", *req.Active)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		stmt = stmt.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var items []locationdomain.Location
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&locationdomain.Location{}).Where("id = ?", id).Updates(fields).Error
}
