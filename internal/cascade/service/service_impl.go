package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	"github.com/smallgrid/enerbill/internal/clock"
	"github.com/smallgrid/enerbill/internal/config"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	txTimeout time.Duration
}

func New(p Params) cascadedomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("cascade.service"),
		clock:     p.Clock,
		txTimeout: time.Duration(p.Cfg.TxTimeoutSeconds) * time.Second,
	}
}

// childRule is one row of the adjacency table: how a parent kind
// counts, deactivates and removes one class of dependents. Remove
// steps run in slice order, so each kind lists its children leaf-first.
type childRule struct {
	label      string
	count      func(ctx context.Context, tx *gorm.DB, parentID snowflake.ID, asOf time.Time) (int64, error)
	deactivate func(ctx context.Context, tx *gorm.DB, parentID snowflake.ID, asOf time.Time) (int64, error)
	remove     func(ctx context.Context, tx *gorm.DB, parentID snowflake.ID) (int64, error)
}

type parentRule struct {
	find            func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (found, active bool, err error)
	flip            func(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	deleteRow       func(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	children        []childRule
	afterDeactivate func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time, affected map[string]int64) error
}

func (s *Service) Dependencies(ctx context.Context, kind cascadedomain.Kind, id string) (*cascadedomain.Report, error) {
	rule, parentID, err := s.resolve(kind, id)
	if err != nil {
		return nil, err
	}

	report := &cascadedomain.Report{Kind: kind, ID: parentID.Int64(), Counts: map[string]int64{}}
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		found, _, err := rule.find(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if !found {
			return cascadedomain.ErrNotFound
		}
		asOf := s.clock.Now()
		for _, child := range rule.children {
			n, err := child.count(ctx, tx, parentID, asOf)
			if err != nil {
				return err
			}
			report.Counts[child.label] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) Deactivate(ctx context.Context, kind cascadedomain.Kind, id string, asOf time.Time) (*cascadedomain.Result, error) {
	rule, parentID, err := s.resolve(kind, id)
	if err != nil {
		return nil, err
	}

	result := &cascadedomain.Result{Kind: kind, ID: parentID.Int64(), Affected: map[string]int64{}}
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		found, active, err := rule.find(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if !found {
			return cascadedomain.ErrNotFound
		}
		if !active {
			// Already inactive rows are never touched again.
			return nil
		}

		for _, child := range rule.children {
			if child.deactivate == nil {
				continue
			}
			n, err := child.deactivate(ctx, tx, parentID, asOf)
			if err != nil {
				return err
			}
			result.Affected[child.label] = n
		}
		if err := rule.flip(ctx, tx, parentID); err != nil {
			return err
		}
		if rule.afterDeactivate != nil {
			if err := rule.afterDeactivate(ctx, tx, parentID, asOf, result.Affected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cascade deactivate",
		zap.String("kind", string(kind)),
		zap.Int64("id", result.ID),
		zap.Any("affected", result.Affected),
	)
	return result, nil
}

func (s *Service) Delete(ctx context.Context, kind cascadedomain.Kind, id string) (*cascadedomain.Result, error) {
	rule, parentID, err := s.resolve(kind, id)
	if err != nil {
		return nil, err
	}

	result := &cascadedomain.Result{Kind: kind, ID: parentID.Int64(), Affected: map[string]int64{}}
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		found, active, err := rule.find(ctx, tx, parentID)
		if err != nil {
			return err
		}
		if !found {
			return cascadedomain.ErrNotFound
		}
		if active {
			return cascadedomain.ErrActiveParent
		}

		for _, child := range rule.children {
			if child.remove == nil {
				continue
			}
			n, err := child.remove(ctx, tx, parentID)
			if err != nil {
				return err
			}
			result.Affected[child.label] = n
		}
		return rule.deleteRow(ctx, tx, parentID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("cascade delete",
		zap.String("kind", string(kind)),
		zap.Int64("id", result.ID),
		zap.Any("affected", result.Affected),
	)
	return result, nil
}

func (s *Service) resolve(kind cascadedomain.Kind, id string) (*parentRule, snowflake.ID, error) {
	parentID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, 0, cascadedomain.ErrInvalidID
	}
	rules := s.rules()
	rule, ok := rules[kind]
	if !ok {
		return nil, 0, cascadedomain.ErrInvalidKind
	}
	return rule, parentID, nil
}

func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// rules is the adjacency table walked by the executor above.
func (s *Service) rules() map[cascadedomain.Kind]*parentRule {
	return map[cascadedomain.Kind]*parentRule{
		cascadedomain.KindLocation: {
			find:      findParent[locationdomain.Location](func(l *locationdomain.Location) bool { return l.IsActive }),
			flip:      flipParent[locationdomain.Location](),
			deleteRow: deleteParent[locationdomain.Location](),
			children: []childRule{
				{
					label: "distributions",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return s.countDistributions(ctx, tx, s.locationReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return s.deleteDistributions(ctx, tx, s.locationReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "readings",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countIn[readingdomain.MeterReading](ctx, tx, "id", s.locationReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[readingdomain.MeterReading](ctx, tx, "id", s.locationReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "assignments",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						ids, err := s.locationAssignmentIDs(ctx, tx, id)()
						if err != nil {
							return 0, err
						}
						return countLiveAssignments(ctx, tx, ids, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[assignmentdomain.MeterTenant](ctx, tx, "id", s.locationAssignmentIDs(ctx, tx, id))
					},
				},
				{
					label: "meters",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[meterdomain.Meter](ctx, tx, "location_id = ? AND is_active = ?", id, true)
					},
					deactivate: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return updateWhere[meterdomain.Meter](ctx, tx, map[string]any{"is_active": false}, "location_id = ? AND is_active = ?", id, true)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[meterdomain.Meter](ctx, tx, "location_id = ?", id)
					},
				},
				{
					label: "tariffs",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						return countWhere[tariffdomain.Tariff](ctx, tx, "location_id = ? AND (valid_to IS NULL OR valid_to >= ?)", id, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[tariffdomain.Tariff](ctx, tx, "location_id = ?", id)
					},
				},
				{
					label: "deliveries",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[deliverydomain.ResourceDelivery](ctx, tx, "location_id = ?", id)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[deliverydomain.ResourceDelivery](ctx, tx, "location_id = ?", id)
					},
				},
			},
			afterDeactivate: s.releaseOwningTenant,
		},
		cascadedomain.KindMeter: {
			find:      findParent[meterdomain.Meter](func(m *meterdomain.Meter) bool { return m.IsActive }),
			flip:      flipParent[meterdomain.Meter](),
			deleteRow: deleteParent[meterdomain.Meter](),
			children: []childRule{
				{
					label: "distributions",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return s.countDistributions(ctx, tx, s.meterReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return s.deleteDistributions(ctx, tx, s.meterReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "readings",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countIn[readingdomain.MeterReading](ctx, tx, "id", s.meterReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[readingdomain.MeterReading](ctx, tx, "id", s.meterReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "assignments",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						return countWhere[assignmentdomain.MeterTenant](ctx, tx, "meter_id = ? AND (assigned_to IS NULL OR assigned_to >= ?)", id, asOf)
					},
					deactivate: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						// Open or future assignments close at the as-of date.
						return updateWhere[assignmentdomain.MeterTenant](ctx, tx, map[string]any{"assigned_to": asOf},
							"meter_id = ? AND (assigned_to IS NULL OR assigned_to > ?)", id, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[assignmentdomain.MeterTenant](ctx, tx, "meter_id = ?", id)
					},
				},
				{
					label: "deliveries",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[deliverydomain.ResourceDelivery](ctx, tx, "meter_id = ?", id)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						// Deliveries survive a meter delete; only the link is dropped.
						return updateWhere[deliverydomain.ResourceDelivery](ctx, tx, map[string]any{"meter_id": nil}, "meter_id = ?", id)
					},
				},
			},
		},
		cascadedomain.KindTenant: {
			find:      findParent[tenantdomain.Tenant](func(t *tenantdomain.Tenant) bool { return t.IsActive }),
			flip:      flipParent[tenantdomain.Tenant](),
			deleteRow: deleteParent[tenantdomain.Tenant](),
			children: []childRule{
				{
					label: "distributions",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return s.countDistributions(ctx, tx, s.tenantReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return s.deleteDistributions(ctx, tx, s.tenantReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "readings",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countIn[readingdomain.MeterReading](ctx, tx, "id", s.tenantReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[readingdomain.MeterReading](ctx, tx, "id", s.tenantReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "assignments",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						return countWhere[assignmentdomain.MeterTenant](ctx, tx, "tenant_id = ? AND (assigned_to IS NULL OR assigned_to >= ?)", id, asOf)
					},
					deactivate: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						return updateWhere[assignmentdomain.MeterTenant](ctx, tx, map[string]any{"assigned_to": asOf},
							"tenant_id = ? AND (assigned_to IS NULL OR assigned_to > ?)", id, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[assignmentdomain.MeterTenant](ctx, tx, "tenant_id = ?", id)
					},
				},
				{
					label: "locations",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[locationdomain.Location](ctx, tx, "tenant_id = ? AND is_active = ?", id, true)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						// Locations outlive their tenant; the back-reference is nulled.
						return updateWhere[locationdomain.Location](ctx, tx, map[string]any{"tenant_id": nil}, "tenant_id = ?", id)
					},
				},
			},
		},
		cascadedomain.KindResourceType: {
			find:      findParent[resourcetypedomain.EnergyResourceType](func(t *resourcetypedomain.EnergyResourceType) bool { return t.IsActive }),
			flip:      flipParent[resourcetypedomain.EnergyResourceType](),
			deleteRow: deleteParent[resourcetypedomain.EnergyResourceType](),
			children: []childRule{
				{
					label: "distributions",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return s.countDistributions(ctx, tx, s.resourceTypeReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return s.deleteDistributions(ctx, tx, s.resourceTypeReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "readings",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countIn[readingdomain.MeterReading](ctx, tx, "id", s.resourceTypeReadingIDs(ctx, tx, id))
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[readingdomain.MeterReading](ctx, tx, "id", s.resourceTypeReadingIDs(ctx, tx, id))
					},
				},
				{
					label: "assignments",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						ids, err := s.resourceTypeAssignmentIDs(ctx, tx, id)()
						if err != nil {
							return 0, err
						}
						return countLiveAssignments(ctx, tx, ids, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteIn[assignmentdomain.MeterTenant](ctx, tx, "id", s.resourceTypeAssignmentIDs(ctx, tx, id))
					},
				},
				{
					label: "meters",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[meterdomain.Meter](ctx, tx, "energy_resource_type_id = ? AND is_active = ?", id, true)
					},
					deactivate: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return updateWhere[meterdomain.Meter](ctx, tx, map[string]any{"is_active": false}, "energy_resource_type_id = ? AND is_active = ?", id, true)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[meterdomain.Meter](ctx, tx, "energy_resource_type_id = ?", id)
					},
				},
				{
					label: "tariffs",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, asOf time.Time) (int64, error) {
						return countWhere[tariffdomain.Tariff](ctx, tx, "energy_resource_type_id = ? AND (valid_to IS NULL OR valid_to >= ?)", id, asOf)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[tariffdomain.Tariff](ctx, tx, "energy_resource_type_id = ?", id)
					},
				},
				{
					label: "deliveries",
					count: func(ctx context.Context, tx *gorm.DB, id snowflake.ID, _ time.Time) (int64, error) {
						return countWhere[deliverydomain.ResourceDelivery](ctx, tx, "energy_resource_type_id = ?", id)
					},
					remove: func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error) {
						return deleteWhere[deliverydomain.ResourceDelivery](ctx, tx, "energy_resource_type_id = ?", id)
					},
				},
			},
		},
	}
}

// releaseOwningTenant deactivates the tenant owning a just-deactivated
// location when no other active location remains under it.
func (s *Service) releaseOwningTenant(ctx context.Context, tx *gorm.DB, locID snowflake.ID, _ time.Time, affected map[string]int64) error {
	var loc locationdomain.Location
	if err := tx.WithContext(ctx).First(&loc, "id = ?", locID).Error; err != nil {
		return err
	}
	if loc.TenantID == nil {
		return nil
	}

	others, err := countWhere[locationdomain.Location](ctx, tx, "tenant_id = ? AND id <> ? AND is_active = ?", *loc.TenantID, locID, true)
	if err != nil {
		return err
	}
	if others > 0 {
		return nil
	}

	n, err := updateWhere[tenantdomain.Tenant](ctx, tx, map[string]any{"is_active": false}, "id = ? AND is_active = ?", *loc.TenantID, true)
	if err != nil {
		return err
	}
	affected["tenants"] = n
	return nil
}

func findParent[T any](isActive func(*T) bool) func(context.Context, *gorm.DB, snowflake.ID) (bool, bool, error) {
	return func(ctx context.Context, tx *gorm.DB, id snowflake.ID) (bool, bool, error) {
		var row T
		if err := tx.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, false, nil
			}
			return false, false, err
		}
		return true, isActive(&row), nil
	}
}

func flipParent[T any]() func(context.Context, *gorm.DB, snowflake.ID) error {
	return func(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
		var row T
		return tx.WithContext(ctx).Model(&row).Where("id = ?", id).Update("is_active", false).Error
	}
}

func deleteParent[T any]() func(context.Context, *gorm.DB, snowflake.ID) error {
	return func(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
		var row T
		return tx.WithContext(ctx).Delete(&row, "id = ?", id).Error
	}
}

func countWhere[T any](ctx context.Context, tx *gorm.DB, query string, args ...any) (int64, error) {
	var row T
	var n int64
	err := tx.WithContext(ctx).Model(&row).Where(query, args...).Count(&n).Error
	return n, err
}

func updateWhere[T any](ctx context.Context, tx *gorm.DB, fields map[string]any, query string, args ...any) (int64, error) {
	var row T
	res := tx.WithContext(ctx).Model(&row).Where(query, args...).Updates(fields)
	return res.RowsAffected, res.Error
}

func deleteWhere[T any](ctx context.Context, tx *gorm.DB, query string, args ...any) (int64, error) {
	var row T
	res := tx.WithContext(ctx).Where(query, args...).Delete(&row)
	return res.RowsAffected, res.Error
}

type idSource func() ([]int64, error)

func countIn[T any](ctx context.Context, tx *gorm.DB, column string, src idSource) (int64, error) {
	ids, err := src()
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return countWhere[T](ctx, tx, column+" IN ?", ids)
}

func deleteIn[T any](ctx context.Context, tx *gorm.DB, column string, src idSource) (int64, error) {
	ids, err := src()
	if err != nil || len(ids) == 0 {
		return 0, err
	}
	return deleteWhere[T](ctx, tx, column+" IN ?", ids)
}

func countLiveAssignments(ctx context.Context, tx *gorm.DB, ids []int64, asOf time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return countWhere[assignmentdomain.MeterTenant](ctx, tx, "id IN ? AND (assigned_to IS NULL OR assigned_to >= ?)", ids, asOf)
}

func pluck[T any](ctx context.Context, tx *gorm.DB, column, query string, args ...any) ([]int64, error) {
	var row T
	var ids []int64
	err := tx.WithContext(ctx).Model(&row).Where(query, args...).Pluck(column, &ids).Error
	return ids, err
}

func (s *Service) locationMeterIDs(ctx context.Context, tx *gorm.DB, locID snowflake.ID) idSource {
	return func() ([]int64, error) {
		return pluck[meterdomain.Meter](ctx, tx, "id", "location_id = ?", locID)
	}
}

func (s *Service) locationAssignmentIDs(ctx context.Context, tx *gorm.DB, locID snowflake.ID) idSource {
	return chain[assignmentdomain.MeterTenant](ctx, tx, "id", "meter_id", s.locationMeterIDs(ctx, tx, locID))
}

func (s *Service) locationReadingIDs(ctx context.Context, tx *gorm.DB, locID snowflake.ID) idSource {
	return chain[readingdomain.MeterReading](ctx, tx, "id", "meter_tenant_id", s.locationAssignmentIDs(ctx, tx, locID))
}

func (s *Service) meterAssignmentIDs(ctx context.Context, tx *gorm.DB, meterID snowflake.ID) idSource {
	return func() ([]int64, error) {
		return pluck[assignmentdomain.MeterTenant](ctx, tx, "id", "meter_id = ?", meterID)
	}
}

func (s *Service) meterReadingIDs(ctx context.Context, tx *gorm.DB, meterID snowflake.ID) idSource {
	return chain[readingdomain.MeterReading](ctx, tx, "id", "meter_tenant_id", s.meterAssignmentIDs(ctx, tx, meterID))
}

func (s *Service) tenantAssignmentIDs(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) idSource {
	return func() ([]int64, error) {
		return pluck[assignmentdomain.MeterTenant](ctx, tx, "id", "tenant_id = ?", tenantID)
	}
}

func (s *Service) tenantReadingIDs(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID) idSource {
	return chain[readingdomain.MeterReading](ctx, tx, "id", "meter_tenant_id", s.tenantAssignmentIDs(ctx, tx, tenantID))
}

func (s *Service) resourceTypeMeterIDs(ctx context.Context, tx *gorm.DB, typeID snowflake.ID) idSource {
	return func() ([]int64, error) {
		return pluck[meterdomain.Meter](ctx, tx, "id", "energy_resource_type_id = ?", typeID)
	}
}

func (s *Service) resourceTypeAssignmentIDs(ctx context.Context, tx *gorm.DB, typeID snowflake.ID) idSource {
	return chain[assignmentdomain.MeterTenant](ctx, tx, "id", "meter_id", s.resourceTypeMeterIDs(ctx, tx, typeID))
}

func (s *Service) resourceTypeReadingIDs(ctx context.Context, tx *gorm.DB, typeID snowflake.ID) idSource {
	return chain[readingdomain.MeterReading](ctx, tx, "id", "meter_tenant_id", s.resourceTypeAssignmentIDs(ctx, tx, typeID))
}

// chain plucks column from T where fkColumn is in the parent id set.
func chain[T any](ctx context.Context, tx *gorm.DB, column, fkColumn string, parent idSource) idSource {
	return func() ([]int64, error) {
		ids, err := parent()
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		return pluck[T](ctx, tx, column, fkColumn+" IN ?", ids)
	}
}

func (s *Service) countDistributions(ctx context.Context, tx *gorm.DB, readings idSource) (int64, error) {
	return countIn[readingdomain.MeterReadingDistribution](ctx, tx, "meter_reading_id", readings)
}

func (s *Service) deleteDistributions(ctx context.Context, tx *gorm.DB, readings idSource) (int64, error) {
	return deleteIn[readingdomain.MeterReadingDistribution](ctx, tx, "meter_reading_id", readings)
}
