package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallgrid/enerbill/internal/reading/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *domain.MeterReading) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MeterReading, error) {
	var m domain.MeterReading
	err := db.WithContext(ctx).
		Preload("Distributions").
		First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.MeterReading, error) {
	q := db.WithContext(ctx).Model(&domain.MeterReading{})
	if req.MeterTenantID != "" {
		id, err := snowflake.ParseString(req.MeterTenantID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		q = q.Where("meter_tenant_id = ?", id)
	}
	if req.DateFrom != nil {
		q = q.Where("reading_date >= ?", *req.DateFrom)
	}
	if req.DateTo != nil {
		q = q.Where("reading_date <= ?", *req.DateTo)
	}
	if req.Method != "" {
		q = q.Where("calculation_method = ?", req.Method)
	}
	if req.ActNumber != "" {
		q = q.Where("act_number = ?", req.ActNumber)
	}
	if req.ExecutorName != "" {
		q = q.Where("lower(executor_name) LIKE ?", "%"+req.ExecutorName+"%")
	}

	var out []domain.MeterReading
	err := q.Preload("Distributions").
		Order("reading_date DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) FindLatestBefore(ctx context.Context, db *gorm.DB, meterTenantID snowflake.ID, date time.Time, excludeID snowflake.ID) (*domain.MeterReading, error) {
	q := db.WithContext(ctx).
		Where("meter_tenant_id = ?", meterTenantID).
		Where("reading_date < ?", date)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var m domain.MeterReading
	err := q.Order("reading_date DESC").Order("id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repo) UpdateVersioned(ctx context.Context, db *gorm.DB, id snowflake.ID, version int64, fields map[string]any) (bool, error) {
	fields["version"] = version + 1
	res := db.WithContext(ctx).
		Model(&domain.MeterReading{}).
		Where("id = ?", id).
		Where("version = ?", version).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ReplaceDistributions(ctx context.Context, db *gorm.DB, readingID snowflake.ID, rows []domain.MeterReadingDistribution) error {
	err := db.WithContext(ctx).
		Delete(&domain.MeterReadingDistribution{}, "meter_reading_id = ?", readingID).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	err := db.WithContext(ctx).
		Delete(&domain.MeterReadingDistribution{}, "meter_reading_id = ?", id).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.MeterReading{}, "id = ?", id).Error
}

func (r *repo) Summary(ctx context.Context, db *gorm.DB, req domain.SummaryRequest) ([]domain.SummaryRow, error) {
	q := db.WithContext(ctx).
		Table("meter_readings").
		Select(`energy_resource_types.id AS resource_type_id,
			energy_resource_types.name AS resource_type_name,
			energy_resource_types.unit AS unit,
			COUNT(meter_readings.id) AS reading_count,
			COALESCE(SUM(meter_readings.total_consumption), 0) AS total_consumption,
			COALESCE(SUM(meter_readings.total_cost), 0) AS total_cost`).
		Joins("JOIN meter_tenants ON meter_tenants.id = meter_readings.meter_tenant_id").
		Joins("JOIN meters ON meters.id = meter_tenants.meter_id").
		Joins("JOIN energy_resource_types ON energy_resource_types.id = meters.energy_resource_type_id").
		Group("energy_resource_types.id, energy_resource_types.name, energy_resource_types.unit").
		Order("energy_resource_types.name")
	if req.DateFrom != nil {
		q = q.Where("meter_readings.reading_date >= ?", *req.DateFrom)
	}
	if req.DateTo != nil {
		q = q.Where("meter_readings.reading_date <= ?", *req.DateTo)
	}

	var out []domain.SummaryRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
