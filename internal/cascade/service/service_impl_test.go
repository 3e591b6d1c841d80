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
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	"github.com/smallgrid/enerbill/internal/clock"
	"github.com/smallgrid/enerbill/internal/config"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	"github.com/smallgrid/enerbill/internal/migration"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
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

// graph is a location with a tenant, three meters of one resource type,
// one open assignment per meter and a reading on the first of them.
type graph struct {
	db       *gorm.DB
	svc      cascadedomain.Service
	location locationdomain.Location
	tenant   tenantdomain.Tenant
	rt       resourcetypedomain.EnergyResourceType
	meters   []meterdomain.Meter
	assigns  []assignmentdomain.MeterTenant
	reading  readingdomain.MeterReading
}

func setupGraph(t *testing.T, node *snowflake.Node, now time.Time) *graph {
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

	g := &graph{db: db}
	g.tenant = tenantdomain.Tenant{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("tenant-%s", t.Name()),
		IsActive: true,
	}
	g.rt = resourcetypedomain.EnergyResourceType{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("type-%s", t.Name()),
		Unit:     "kWh",
		IsActive: true,
	}
	g.location = locationdomain.Location{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("loc-%s", t.Name()),
		TenantID: &g.tenant.ID,
		IsActive: true,
	}
	for _, row := range []any{&g.tenant, &g.rt, &g.location} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	for i := 0; i < 3; i++ {
		m := meterdomain.Meter{
			ID:                   node.Generate(),
			SerialNumber:         fmt.Sprintf("sn-%s-%d", t.Name(), i),
			LocationID:           g.location.ID,
			EnergyResourceTypeID: g.rt.ID,
			IsActive:             true,
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed meter: %v", err)
		}
		g.meters = append(g.meters, m)

		a := assignmentdomain.MeterTenant{
			ID:           node.Generate(),
			MeterID:      m.ID,
			TenantID:     g.tenant.ID,
			AssignedFrom: date(t, "2025-01-01"),
		}
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
		g.assigns = append(g.assigns, a)
	}

	tariff := tariffdomain.Tariff{
		ID:                   node.Generate(),
		LocationID:           g.location.ID,
		EnergyResourceTypeID: g.rt.ID,
		Price:                decimal.RequireFromString("2.5"),
		ValidFrom:            date(t, "2025-01-01"),
		Version:              1,
	}
	if err := db.Create(&tariff).Error; err != nil {
		t.Fatalf("seed tariff: %v", err)
	}

	g.reading = readingdomain.MeterReading{
		ID:                node.Generate(),
		MeterTenantID:     g.assigns[0].ID,
		ReadingDate:       date(t, "2025-02-01"),
		CurrentReading:    decimal.RequireFromString("100"),
		Consumption:       decimal.RequireFromString("100"),
		DirectConsumption: decimal.RequireFromString("100"),
		TotalConsumption:  decimal.RequireFromString("100"),
		UnitPrice:         tariff.Price,
		TotalCost:         decimal.RequireFromString("250"),
		CalculationMethod: "direct",
		CalculationCoeff:  decimal.NewFromInt(1),
		EnergyCoeff:       decimal.NewFromInt(1),
		AreaPercentage:    decimal.NewFromInt(100),
		Version:           1,
	}
	if err := db.Create(&g.reading).Error; err != nil {
		t.Fatalf("seed reading: %v", err)
	}
	dist := readingdomain.MeterReadingDistribution{
		ID:               node.Generate(),
		MeterReadingID:   g.reading.ID,
		Category:         readingdomain.CategoryGeneral,
		CurrentReading:   g.reading.CurrentReading,
		Difference:       g.reading.Consumption,
		CalculationCoeff: decimal.NewFromInt(1),
		AreaPercentage:   decimal.NewFromInt(100),
		ConsumedEnergy:   g.reading.TotalConsumption,
		Cost:             g.reading.TotalCost,
	}
	if err := db.Create(&dist).Error; err != nil {
		t.Fatalf("seed distribution: %v", err)
	}

	g.svc = New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Cfg:   config.Config{TxTimeoutSeconds: 5},
		Clock: clock.NewFakeClock(now),
	})
	return g
}

func countRows[T any](t *testing.T, db *gorm.DB, query string, args ...any) int64 {
	t.Helper()
	var row T
	var n int64
	if err := db.Model(&row).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestDependenciesCountsSubtree(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))

	report, err := g.svc.Dependencies(context.Background(), cascadedomain.KindLocation, g.location.ID.String())
	if err != nil {
		t.Fatalf("dependencies: %v", err)
	}
	if report.Counts["meters"] != 3 {
		t.Fatalf("expected 3 meters, got %d", report.Counts["meters"])
	}
	if report.Counts["assignments"] != 3 {
		t.Fatalf("expected 3 live assignments, got %d", report.Counts["assignments"])
	}
	if report.Counts["readings"] != 1 {
		t.Fatalf("expected 1 reading, got %d", report.Counts["readings"])
	}
	if report.Counts["distributions"] != 1 {
		t.Fatalf("expected 1 distribution, got %d", report.Counts["distributions"])
	}
	if report.Counts["tariffs"] != 1 {
		t.Fatalf("expected 1 live tariff, got %d", report.Counts["tariffs"])
	}
}

func TestDependenciesUnknownParent(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))

	_, err := g.svc.Dependencies(context.Background(), cascadedomain.KindMeter, node.Generate().String())
	if !errors.Is(err, cascadedomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivateLocationCascades(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))
	ctx := context.Background()

	result, err := g.svc.Deactivate(ctx, cascadedomain.KindLocation, g.location.ID.String(), date(t, "2025-03-01"))
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if result.Affected["meters"] != 3 {
		t.Fatalf("expected 3 meters deactivated, got %d", result.Affected["meters"])
	}
	if result.Affected["tenants"] != 1 {
		t.Fatalf("expected owning tenant released, got %d", result.Affected["tenants"])
	}

	if n := countRows[locationdomain.Location](t, g.db, "id = ? AND is_active = ?", g.location.ID, true); n != 0 {
		t.Fatal("location must be inactive")
	}
	if n := countRows[meterdomain.Meter](t, g.db, "location_id = ? AND is_active = ?", g.location.ID, true); n != 0 {
		t.Fatal("all meters must be inactive")
	}
	if n := countRows[tenantdomain.Tenant](t, g.db, "id = ? AND is_active = ?", g.tenant.ID, true); n != 0 {
		t.Fatal("tenant with no other active location must be inactive")
	}
}

func TestDeactivateIsIdempotent(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))
	ctx := context.Background()
	asOf := date(t, "2025-03-01")

	if _, err := g.svc.Deactivate(ctx, cascadedomain.KindLocation, g.location.ID.String(), asOf); err != nil {
		t.Fatalf("first deactivate: %v", err)
	}
	second, err := g.svc.Deactivate(ctx, cascadedomain.KindLocation, g.location.ID.String(), asOf)
	if err != nil {
		t.Fatalf("second deactivate: %v", err)
	}
	if len(second.Affected) != 0 {
		t.Fatalf("second deactivate must touch nothing, got %v", second.Affected)
	}
}

func TestDeactivateTenantKeepsOtherActiveLocation(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))

	other := locationdomain.Location{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("other-%s", t.Name()),
		TenantID: &g.tenant.ID,
		IsActive: true,
	}
	if err := g.db.Create(&other).Error; err != nil {
		t.Fatalf("seed other location: %v", err)
	}

	if _, err := g.svc.Deactivate(context.Background(), cascadedomain.KindLocation, g.location.ID.String(), date(t, "2025-03-01")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if n := countRows[tenantdomain.Tenant](t, g.db, "id = ? AND is_active = ?", g.tenant.ID, true); n != 1 {
		t.Fatal("tenant with another active location must stay active")
	}
}

func TestDeactivateMeterClosesAssignments(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))
	asOf := date(t, "2025-03-01")

	result, err := g.svc.Deactivate(context.Background(), cascadedomain.KindMeter, g.meters[0].ID.String(), asOf)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if result.Affected["assignments"] != 1 {
		t.Fatalf("expected 1 assignment closed, got %d", result.Affected["assignments"])
	}

	var a assignmentdomain.MeterTenant
	if err := g.db.First(&a, "id = ?", g.assigns[0].ID).Error; err != nil {
		t.Fatalf("reload assignment: %v", err)
	}
	if a.AssignedTo == nil || !a.AssignedTo.Equal(asOf) {
		t.Fatalf("expected assignment closed at %s, got %v", asOf, a.AssignedTo)
	}
}

func TestDeleteActiveParentRejected(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))

	_, err := g.svc.Delete(context.Background(), cascadedomain.KindLocation, g.location.ID.String())
	if !errors.Is(err, cascadedomain.ErrActiveParent) {
		t.Fatalf("expected ErrActiveParent, got %v", err)
	}
	if n := countRows[meterdomain.Meter](t, g.db, "location_id = ?", g.location.ID); n != 3 {
		t.Fatalf("rejected delete must leave meters, found %d", n)
	}
}

func TestDeleteLocationRemovesSubtree(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))
	ctx := context.Background()

	if _, err := g.svc.Deactivate(ctx, cascadedomain.KindLocation, g.location.ID.String(), date(t, "2025-03-01")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	result, err := g.svc.Delete(ctx, cascadedomain.KindLocation, g.location.ID.String())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Affected["meters"] != 3 {
		t.Fatalf("expected 3 meters removed, got %d", result.Affected["meters"])
	}
	if result.Affected["readings"] != 1 {
		t.Fatalf("expected 1 reading removed, got %d", result.Affected["readings"])
	}
	if result.Affected["distributions"] != 1 {
		t.Fatalf("expected 1 distribution removed, got %d", result.Affected["distributions"])
	}

	if n := countRows[locationdomain.Location](t, g.db, "id = ?", g.location.ID); n != 0 {
		t.Fatal("location row must be gone")
	}
	if n := countRows[meterdomain.Meter](t, g.db, "location_id = ?", g.location.ID); n != 0 {
		t.Fatal("meter rows must be gone")
	}
	if n := countRows[assignmentdomain.MeterTenant](t, g.db, "tenant_id = ?", g.tenant.ID); n != 0 {
		t.Fatal("assignment rows must be gone")
	}
	if n := countRows[readingdomain.MeterReading](t, g.db, "meter_tenant_id = ?", g.assigns[0].ID); n != 0 {
		t.Fatal("reading rows must be gone")
	}
	if n := countRows[tariffdomain.Tariff](t, g.db, "location_id = ?", g.location.ID); n != 0 {
		t.Fatal("tariff rows must be gone")
	}
}

func TestDeleteMeterDetachesDeliveries(t *testing.T) {
	node := mustNode(t)
	g := setupGraph(t, node, date(t, "2025-03-01"))
	ctx := context.Background()
	meter := g.meters[1]

	delivery := deliverydomain.ResourceDelivery{
		ID:                   node.Generate(),
		LocationID:           g.location.ID,
		MeterID:              &meter.ID,
		EnergyResourceTypeID: g.rt.ID,
		DeliveryDate:         date(t, "2025-02-10"),
		Quantity:             decimal.RequireFromString("10"),
		PricePerUnit:         decimal.RequireFromString("2.5"),
		TotalCost:            decimal.RequireFromString("25.00"),
	}
	if err := g.db.Create(&delivery).Error; err != nil {
		t.Fatalf("seed delivery: %v", err)
	}

	if _, err := g.svc.Deactivate(ctx, cascadedomain.KindMeter, meter.ID.String(), date(t, "2025-03-01")); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := g.svc.Delete(ctx, cascadedomain.KindMeter, meter.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var detached int64
	if err := g.db.Table("resource_deliveries").
		Where("location_id = ? AND meter_id IS NULL", g.location.ID).Count(&detached).Error; err != nil {
		t.Fatalf("count deliveries: %v", err)
	}
	if detached != 1 {
		t.Fatalf("expected delivery detached from meter, got %d", detached)
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"location", "meter", "tenant", "resource_type"} {
		if _, err := cascadedomain.ParseKind(s); err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
	}
	if _, err := cascadedomain.ParseKind("invoice"); !errors.Is(err, cascadedomain.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}
