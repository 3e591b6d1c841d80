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

	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	locationrepo "github.com/smallgrid/enerbill/internal/location/repository"
	meterrepo "github.com/smallgrid/enerbill/internal/meter/repository"
	"github.com/smallgrid/enerbill/internal/migration"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
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

func setupDeliveryService(t *testing.T, node *snowflake.Node) (deliverydomain.Service, snowflake.ID, snowflake.ID) {
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

	loc := locationdomain.Location{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("loc-%s", t.Name()),
		IsActive: true,
	}
	rt := resourcetypedomain.EnergyResourceType{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("type-%s", t.Name()),
		Unit:     "m3",
		IsActive: true,
	}
	for _, row := range []any{&loc, &rt} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		LocationRepo: locationrepo.Provide(),
		MeterRepo:    meterrepo.Provide(),
	})
	return svc, loc.ID, rt.ID
}

func TestCreateComputesTotalCost(t *testing.T) {
	node := mustNode(t)
	svc, locID, typeID := setupDeliveryService(t, node)

	created, err := svc.Create(context.Background(), deliverydomain.CreateRequest{
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
		DeliveryDate:   date(t, "2025-02-10"),
		Quantity:       decimal.RequireFromString("12.5"),
		Unit:           "m3",
		PricePerUnit:   decimal.RequireFromString("3.333"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.TotalCost.Equal(decimal.RequireFromString("41.66")) {
		t.Fatalf("expected total cost 41.66, got %s", created.TotalCost)
	}
}

func TestCreateRejectsSecondDeliverySameDay(t *testing.T) {
	node := mustNode(t)
	svc, locID, typeID := setupDeliveryService(t, node)
	ctx := context.Background()

	req := deliverydomain.CreateRequest{
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
		DeliveryDate:   date(t, "2025-02-10"),
		Quantity:       decimal.RequireFromString("10"),
		PricePerUnit:   decimal.RequireFromString("2"),
	}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create first: %v", err)
	}

	_, err := svc.Create(ctx, req)
	if !errors.Is(err, deliverydomain.ErrDuplicateDelivery) {
		t.Fatalf("expected ErrDuplicateDelivery, got %v", err)
	}
}

func TestCreateRejectsNonPositiveQuantity(t *testing.T) {
	node := mustNode(t)
	svc, locID, typeID := setupDeliveryService(t, node)

	_, err := svc.Create(context.Background(), deliverydomain.CreateRequest{
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
		DeliveryDate:   date(t, "2025-02-10"),
		Quantity:       decimal.Zero,
		PricePerUnit:   decimal.RequireFromString("2"),
	})
	if !errors.Is(err, deliverydomain.ErrNonPositiveQuantity) {
		t.Fatalf("expected ErrNonPositiveQuantity, got %v", err)
	}
}

func TestUpdateRecomputesTotalCost(t *testing.T) {
	node := mustNode(t)
	svc, locID, typeID := setupDeliveryService(t, node)
	ctx := context.Background()

	created, err := svc.Create(ctx, deliverydomain.CreateRequest{
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
		DeliveryDate:   date(t, "2025-02-10"),
		Quantity:       decimal.RequireFromString("10"),
		PricePerUnit:   decimal.RequireFromString("2"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	qty := decimal.RequireFromString("15")
	updated, err := svc.Update(ctx, created.ID.String(), deliverydomain.UpdateRequest{
		Quantity: &qty,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.TotalCost.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("expected total cost 30, got %s", updated.TotalCost)
	}
}
