package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() tenantdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *tenantdomain.Tenant) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*tenantdomain.Tenant, error) {
	var t tenantdomain.Tenant
	err := db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*tenantdomain.Tenant, error) {
	var t tenantdomain.Tenant
	err := db.WithContext(ctx).First(&t, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req tenantdomain.ListRequest) ([]tenantdomain.Tenant, error) {
	stmt := db.WithContext(ctx).Model(&tenantdomain.Tenant{})
	if req.Active != nil {
		stmt = stmt.Where("is_active = ?", *req.Active)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		stmt = stmt.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	var items []tenantdomain.Tenant
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&tenantdomain.Tenant{}).Where("id = ?", id).Updates(fields).Error
}
