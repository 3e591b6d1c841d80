package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallgrid/enerbill/internal/assignment/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, a *domain.MeterTenant) error {
	return db.WithContext(ctx).Create(a).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MeterTenant, error) {
	var a domain.MeterTenant
	if err := db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest, asOf time.Time) ([]domain.MeterTenant, error) {
	q := db.WithContext(ctx).Model(&domain.MeterTenant{})
	if req.MeterID != "" {
		id, err := snowflake.ParseString(req.MeterID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		q = q.Where("meter_id = ?", id)
	}
	if req.TenantID != "" {
		id, err := snowflake.ParseString(req.TenantID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		q = q.Where("tenant_id = ?", id)
	}
	if req.ActiveOnly {
		q = q.Where("assigned_to IS NULL OR assigned_to >= ?", asOf)
	}

	var out []domain.MeterTenant
	if err := q.Order("assigned_from DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&domain.MeterTenant{}).Where("id = ?", id).Updates(fields).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.MeterTenant{}, "id = ?", id).Error
}

func (r *repo) FindOverlapping(ctx context.Context, db *gorm.DB, meterID, tenantID snowflake.ID, from time.Time, to *time.Time, excludeID snowflake.ID) (*domain.MeterTenant, error) {
	q := db.WithContext(ctx).
		Model(&domain.MeterTenant{}).
		Where("meter_id = ?", meterID).
		Where("tenant_id = ?", tenantID).
		Where("assigned_to IS NULL OR assigned_to >= ?", from)
	if to != nil {
		q = q.Where("assigned_from <= ?", *to)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var a domain.MeterTenant
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
