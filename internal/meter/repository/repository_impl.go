package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() meterdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *meterdomain.Meter) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*meterdomain.Meter, error) {
	var m meterdomain.Meter
	err := db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*meterdomain.Meter, error) {
	var m meterdomain.Meter
	err := db.WithContext(ctx).First(&m, "serial_number = ?", serial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req meterdomain.ListRequest) ([]meterdomain.Meter, error) {
	stmt := db.WithContext(ctx).Model(&meterdomain.Meter{})
	if req.Active != nil {
		stmt = stmt.Where("is_active = ?", *req.Active)
	}
	if serial := strings.TrimSpace(req.SerialNumber); serial != "" {
		stmt = stmt.Where("lower(serial_number) LIKE ?", "%"+strings.ToLower(serial)+"%")
	}
	if req.LocationID != "" {
		if id, err := snowflake.ParseString(req.LocationID); err == nil {
			stmt = stmt.Where("location_id = ?", id)
		}
	}
	if req.ResourceTypeID != "" {
		if id, err := snowflake.ParseString(req.ResourceTypeID); err == nil {
			stmt = stmt.Where("energy_resource_type_id = ?", id)
		}
	}

	var items []meterdomain.Meter
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).Model(&meterdomain.Meter{}).Where("id = ?", id).Updates(fields).Error
}
