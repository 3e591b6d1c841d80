package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	assignmentrepo "github.com/smallgrid/enerbill/internal/assignment/repository"
	"github.com/smallgrid/enerbill/internal/config"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	locationrepo "github.com/smallgrid/enerbill/internal/location/repository"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	meterrepo "github.com/smallgrid/enerbill/internal/meter/repository"
	"github.com/smallgrid/enerbill/internal/migration"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	readingrepo "github.com/smallgrid/enerbill/internal/reading/repository"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	tariffrepo "github.com/smallgrid/enerbill/internal/tariff/repository"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// fixture is everything a reading needs: location, meter, tenant,
// assignment and an open-ended tariff.
type fixture struct {
	db           *gorm.DB
	svc          readingdomain.Service
	assignmentID snowflake.ID
	locationID   snowflake.ID
	typeID       snowflake.ID
}

func setupReadingService(t *testing.T, node *snowflake.Node, tariffPrice string) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	if err := migration.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	area := dec("852.00")
	loc := locationdomain.Location{
		ID:           node.Generate(),
		Name:         fmt.Sprintf("loc-%s", t.Name()),
		OccupiedArea: &area,
		IsActive:     true,
	}
	rt := resourcetypedomain.EnergyResourceType{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("type-%s", t.Name()),
		Unit:     "kWh",
		IsActive: true,
	}
	tenant := tenantdomain.Tenant{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("tenant-%s", t.Name()),
		IsActive: true,
	}
	meter := meterdomain.Meter{
		ID:                   node.Generate(),
		SerialNumber:         fmt.Sprintf("sn-%s", t.Name()),
		LocationID:           loc.ID,
		EnergyResourceTypeID: rt.ID,
		IsActive:             true,
	}
	assignment := assignmentdomain.MeterTenant{
		ID:           node.Generate(),
		MeterID:      meter.ID,
		TenantID:     tenant.ID,
		AssignedFrom: date(t, "2025-01-01"),
	}
	tariff := tariffdomain.Tariff{
		ID:                   node.Generate(),
		LocationID:           loc.ID,
		EnergyResourceTypeID: rt.ID,
		Price:                dec(tariffPrice),
		ValidFrom:            date(t, "2025-01-01"),
		Version:              1,
	}
	for _, row := range []any{&loc, &rt, &tenant, &meter, &assignment, &tariff} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	svc := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		Cfg:            config.Config{TxTimeoutSeconds: 5},
		GenID:          node,
		Repo:           readingrepo.Provide(),
		AssignmentRepo: assignmentrepo.Provide(),
		MeterRepo:      meterrepo.Provide(),
		LocationRepo:   locationrepo.Provide(),
		TariffRepo:     tariffrepo.Provide(),
	})

	return &fixture{
		db:           db,
		svc:          svc,
		assignmentID: assignment.ID,
		locationID:   loc.ID,
		typeID:       rt.ID,
	}
}

func TestCreateDirectReading(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.5")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("1500.5"),
		PreviousReading: decPtr("1450.2"),
		Method:          "direct",
		CreatedBy:       "inspector-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.TotalConsumption.Equal(dec("50.3")) {
		t.Fatalf("expected consumption 50.3, got %s", created.TotalConsumption)
	}
	if !created.TotalCost.Equal(dec("125.75")) {
		t.Fatalf("expected cost 125.75, got %s", created.TotalCost)
	}
	if !created.UnitPrice.Equal(dec("2.5")) {
		t.Fatalf("expected frozen unit price 2.5, got %s", created.UnitPrice)
	}
	if created.CreatedBy != "inspector-1" {
		t.Fatalf("expected created_by inspector-1, got %q", created.CreatedBy)
	}
	if created.Version != 1 {
		t.Fatalf("expected version 1, got %d", created.Version)
	}
}

func TestCreateAreaBasedReading(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "1.0")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("0"),
		Method:         "area_based",
		EnergyCoeff:    decPtr("0.0131"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	// 852.00 occupied area from the location, 0.0131 coefficient, 100%.
	if !created.AreaBasedConsumption.Equal(dec("11.1612")) {
		t.Fatalf("expected area consumption 11.1612, got %s", created.AreaBasedConsumption)
	}
	if !created.TotalCost.Equal(dec("11.16")) {
		t.Fatalf("expected cost 11.16, got %s", created.TotalCost)
	}
}

func TestCreateUsesLatestPriorReading(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-02-01"),
		CurrentReading: dec("100"),
		Method:         "direct",
	}); err != nil {
		t.Fatalf("create first: %v", err)
	}

	second, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("160"),
		Method:         "direct",
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if !second.PreviousReading.Equal(dec("100")) {
		t.Fatalf("expected previous 100 from prior reading, got %s", second.PreviousReading)
	}
	if !second.Consumption.Equal(dec("60")) {
		t.Fatalf("expected consumption 60, got %s", second.Consumption)
	}
}

func TestCreateRejectsNegativeConsumption(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")

	_, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("90"),
		PreviousReading: decPtr("100"),
		Method:          "direct",
	})
	if err == nil {
		t.Fatal("expected negative consumption error")
	}
	var count int64
	if err := f.db.Model(&readingdomain.MeterReading{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected reading must not persist, found %d rows", count)
	}
}

func TestCreateWithoutTariffFails(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")
	if err := f.db.Where("location_id = ?", f.locationID).Delete(&tariffdomain.Tariff{}).Error; err != nil {
		t.Fatalf("drop tariffs: %v", err)
	}

	_, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("10"),
		Method:         "direct",
	})
	if !errors.Is(err, tariffdomain.ErrNoApplicableTariff) {
		t.Fatalf("expected ErrNoApplicableTariff, got %v", err)
	}
}

func TestCreateDistributionsOverrideTotalCost(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")

	created, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("150"),
		PreviousReading: decPtr("100"),
		Method:          "direct",
		Distributions: []readingdomain.DistributionInput{
			{Category: "CA", CurrentReading: dec("120"), PreviousReading: dec("100")},
			{Category: "CP", CurrentReading: dec("150"), PreviousReading: dec("120")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Distributions) != 2 {
		t.Fatalf("expected 2 distribution rows, got %d", len(created.Distributions))
	}
	// 20 * 2.0 = 40.00 and 30 * 2.0 = 60.00; their sum replaces the
	// aggregate cost.
	if !created.Distributions[0].Cost.Equal(dec("40")) {
		t.Fatalf("expected CA cost 40, got %s", created.Distributions[0].Cost)
	}
	if !created.Distributions[1].Cost.Equal(dec("60")) {
		t.Fatalf("expected CP cost 60, got %s", created.Distributions[1].Cost)
	}
	if !created.TotalCost.Equal(dec("100")) {
		t.Fatalf("expected total cost 100 from distribution sum, got %s", created.TotalCost)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")

	_, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("10"),
		Method:         "direct",
		Distributions: []readingdomain.DistributionInput{
			{Category: "XX", CurrentReading: dec("10"), PreviousReading: dec("0")},
		},
	})
	if !errors.Is(err, readingdomain.ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCreateRejectsAreaWeightOutOfRange(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")

	_, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:  f.assignmentID.String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("10"),
		Method:         "direct",
		AreaPercentage: decPtr("120"),
	})
	if !errors.Is(err, readingdomain.ErrInvalidAreaWeight) {
		t.Fatalf("expected ErrInvalidAreaWeight, got %v", err)
	}
}

func TestCreateUnknownAssignment(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")

	_, err := f.svc.Create(context.Background(), readingdomain.CreateRequest{
		MeterTenantID:  node.Generate().String(),
		ReadingDate:    date(t, "2025-03-01"),
		CurrentReading: dec("10"),
		Method:         "direct",
	})
	if !errors.Is(err, readingdomain.ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestUpdateRecomputesCost(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.5")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("1500.5"),
		PreviousReading: decPtr("1450.2"),
		Method:          "direct",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := f.svc.Update(ctx, created.ID.String(), readingdomain.UpdateRequest{
		CurrentReading: decPtr("1550.2"),
		Version:        created.Version,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Consumption.Equal(dec("100")) {
		t.Fatalf("expected consumption 100, got %s", updated.Consumption)
	}
	if !updated.TotalCost.Equal(dec("250")) {
		t.Fatalf("expected cost 250, got %s", updated.TotalCost)
	}
	if updated.Version != created.Version+1 {
		t.Fatalf("expected version bump, got %d", updated.Version)
	}
}

func TestUpdateAuditFieldsSkipsRecompute(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.5")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("1500.5"),
		PreviousReading: decPtr("1450.2"),
		Method:          "direct",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	notes := "act signed on site"
	updated, err := f.svc.Update(ctx, created.ID.String(), readingdomain.UpdateRequest{
		Notes:   &notes,
		Version: created.Version,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Notes != notes {
		t.Fatalf("expected notes updated, got %q", updated.Notes)
	}
	if !updated.TotalCost.Equal(created.TotalCost) {
		t.Fatalf("audit-only update must keep cost %s, got %s", created.TotalCost, updated.TotalCost)
	}
}

func TestUpdateVersionConflict(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.5")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("1500.5"),
		PreviousReading: decPtr("1450.2"),
		Method:          "direct",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Update(ctx, created.ID.String(), readingdomain.UpdateRequest{
		CurrentReading: decPtr("1600"),
		Version:        created.Version,
	}); err != nil {
		t.Fatalf("first update: %v", err)
	}

	_, err = f.svc.Update(ctx, created.ID.String(), readingdomain.UpdateRequest{
		CurrentReading: decPtr("1700"),
		Version:        created.Version,
	})
	if !errors.Is(err, readingdomain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestDeleteRemovesDistributions(t *testing.T) {
	node := mustNode(t)
	f := setupReadingService(t, node, "2.0")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, readingdomain.CreateRequest{
		MeterTenantID:   f.assignmentID.String(),
		ReadingDate:     date(t, "2025-03-01"),
		CurrentReading:  dec("150"),
		PreviousReading: decPtr("100"),
		Method:          "direct",
		Distributions: []readingdomain.DistributionInput{
			{Category: "GR", CurrentReading: dec("150"), PreviousReading: dec("100")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := f.svc.Delete(ctx, created.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	if err := f.db.Model(&readingdomain.MeterReadingDistribution{}).
		Where("meter_reading_id = ?", created.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected distributions gone, found %d", count)
	}
	if _, err := f.svc.Get(ctx, created.ID.String()); !errors.Is(err, readingdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
