package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallgrid/enerbill/internal/tariff/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *domain.Tariff) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tariff, error) {
	var t domain.Tariff
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Tariff, error) {
	q := db.WithContext(ctx).Model(&domain.Tariff{})
	if req.LocationID != "" {
		id, err := snowflake.ParseString(req.LocationID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		q = q.Where("location_id = ?", id)
	}
	if req.ResourceTypeID != "" {
		id, err := snowflake.ParseString(req.ResourceTypeID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		q = q.Where("energy_resource_type_id = ?", id)
	}

	var out []domain.Tariff
	if err := q.Order("valid_from DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) FindApplicable(ctx context.Context, db *gorm.DB, locationID, resourceTypeID snowflake.ID, onDate time.Time) (*domain.Tariff, error) {
	var t domain.Tariff
	err := db.WithContext(ctx).
		Where("location_id = ?", locationID).
		Where("energy_resource_type_id = ?", resourceTypeID).
		Where("valid_from <= ?", onDate).
		Where("valid_to IS NULL OR valid_to >= ?", onDate).
		Order("valid_from DESC").
		Order("created_at DESC").
		Order("id DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) FindOverlapping(ctx context.Context, db *gorm.DB, locationID, resourceTypeID snowflake.ID, from time.Time, to *time.Time, excludeID snowflake.ID) (*domain.Tariff, error) {
	q := db.WithContext(ctx).
		Model(&domain.Tariff{}).
		Where("location_id = ?", locationID).
		Where("energy_resource_type_id = ?", resourceTypeID).
		Where("valid_to IS NULL OR valid_to >= ?", from)
	if to != nil {
		q = q.Where("valid_from <= ?", *to)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var t domain.Tariff
	if err := q.First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) UpdateVersioned(ctx context.Context, db *gorm.DB, id snowflake.ID, version int64, fields map[string]any) (bool, error) {
	fields["version"] = version + 1
	res := db.WithContext(ctx).
		Model(&domain.Tariff{}).
		Where("id = ?", id).
		Where("version = ?", version).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Tariff{}, "id = ?", id).Error
}
