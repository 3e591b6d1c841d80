package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	locationrepo "github.com/smallgrid/enerbill/internal/location/repository"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
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

func setupMeterService(t *testing.T, node *snowflake.Node) (meterdomain.Service, *gorm.DB, snowflake.ID, snowflake.ID) {
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
		Unit:     "kWh",
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
		Repo:         meterrepo.Provide(),
		LocationRepo: locationrepo.Provide(),
	})
	return svc, db, loc.ID, rt.ID
}

func TestCreateMeter(t *testing.T) {
	node := mustNode(t)
	svc, _, locID, typeID := setupMeterService(t, node)

	created, err := svc.Create(context.Background(), meterdomain.CreateRequest{
		SerialNumber:   "EM-001",
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
	})
	assert.NoError(t, err)
	assert.Equal(t, "EM-001", created.SerialNumber)
	assert.True(t, created.IsActive)
}

func TestCreateMeterDuplicateSerial(t *testing.T) {
	node := mustNode(t)
	svc, _, locID, typeID := setupMeterService(t, node)
	ctx := context.Background()

	req := meterdomain.CreateRequest{
		SerialNumber:   "EM-002",
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
	}
	_, err := svc.Create(ctx, req)
	assert.NoError(t, err)

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, meterdomain.ErrSerialTaken)
}

func TestCreateMeterInactiveLocation(t *testing.T) {
	node := mustNode(t)
	svc, db, locID, typeID := setupMeterService(t, node)
	err := db.Model(&locationdomain.Location{}).Where("id = ?", locID).Update("is_active", false).Error
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), meterdomain.CreateRequest{
		SerialNumber:   "EM-003",
		LocationID:     locID.String(),
		ResourceTypeID: typeID.String(),
	})
	assert.ErrorIs(t, err, locationdomain.ErrInactive)
}

func TestListMetersByLocation(t *testing.T) {
	node := mustNode(t)
	svc, db, locID, typeID := setupMeterService(t, node)
	ctx := context.Background()

	other := locationdomain.Location{
		ID:       node.Generate(),
		Name:     fmt.Sprintf("other-%s", t.Name()),
		IsActive: true,
	}
	assert.NoError(t, db.Create(&other).Error)

	for i, loc := range []snowflake.ID{locID, locID, other.ID} {
		_, err := svc.Create(ctx, meterdomain.CreateRequest{
			SerialNumber:   fmt.Sprintf("EM-10%d", i),
			LocationID:     loc.String(),
			ResourceTypeID: typeID.String(),
		})
		assert.NoError(t, err)
	}

	rows, err := svc.List(ctx, meterdomain.ListRequest{LocationID: locID.String()})
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
}
