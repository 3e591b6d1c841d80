package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	"github.com/smallgrid/enerbill/pkg/db"
	"github.com/smallgrid/enerbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	LocationRepo locationdomain.Repository
	MeterRepo    meterdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	store        repository.Repository[deliverydomain.ResourceDelivery]
	typeStore    repository.Repository[resourcetypedomain.EnergyResourceType]
	locationRepo locationdomain.Repository
	meterRepo    meterdomain.Repository
}

func New(p Params) deliverydomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("delivery.service"),
		genID:        p.GenID,
		store:        repository.ProvideStore[deliverydomain.ResourceDelivery](p.DB),
		typeStore:    repository.ProvideStore[resourcetypedomain.EnergyResourceType](p.DB),
		locationRepo: p.LocationRepo,
		meterRepo:    p.MeterRepo,
	}
}

func (s *Service) List(ctx context.Context, req deliverydomain.ListRequest) ([]deliverydomain.ResourceDelivery, error) {
	query := &deliverydomain.ResourceDelivery{}
	if req.LocationID != "" {
		id, err := snowflake.ParseString(req.LocationID)
		if err != nil {
			return nil, locationdomain.ErrInvalidID
		}
		query.LocationID = id
	}
	if req.ResourceTypeID != "" {
		id, err := snowflake.ParseString(req.ResourceTypeID)
		if err != nil {
			return nil, resourcetypedomain.ErrInvalidID
		}
		query.EnergyResourceTypeID = id
	}

	items, err := s.store.Find(ctx, query, "delivery_date DESC")
	if err != nil {
		return nil, err
	}
	out := make([]deliverydomain.ResourceDelivery, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*deliverydomain.ResourceDelivery, error) {
	deliveryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, deliverydomain.ErrInvalidID
	}

	item, err := s.store.FindOne(ctx, &deliverydomain.ResourceDelivery{ID: deliveryID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, deliverydomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req deliverydomain.CreateRequest) (*deliverydomain.ResourceDelivery, error) {
	locID, err := s.requireActiveLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	typeID, err := s.requireActiveResourceType(ctx, req.ResourceTypeID)
	if err != nil {
		return nil, err
	}

	var meterID *snowflake.ID
	if req.MeterID != nil && *req.MeterID != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.MeterID))
		if err != nil {
			return nil, meterdomain.ErrInvalidID
		}
		m, err := s.meterRepo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, meterdomain.ErrNotFound
		}
		meterID = &id
	}

	if !req.Quantity.IsPositive() {
		return nil, deliverydomain.ErrNonPositiveQuantity
	}

	date := truncateDate(req.DeliveryDate)
	dup, err := s.store.Count(ctx, &deliverydomain.ResourceDelivery{
		LocationID:           locID,
		EnergyResourceTypeID: typeID,
		DeliveryDate:         date,
	})
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, deliverydomain.ErrDuplicateDelivery
	}

	totalCost := req.Quantity.Mul(req.PricePerUnit).Round(2)
	if req.TotalCost != nil {
		totalCost = req.TotalCost.Round(2)
	}

	entity := &deliverydomain.ResourceDelivery{
		ID:                   s.genID.Generate(),
		LocationID:           locID,
		MeterID:              meterID,
		EnergyResourceTypeID: typeID,
		DeliveryDate:         date,
		Quantity:             req.Quantity,
		Unit:                 strings.TrimSpace(req.Unit),
		PricePerUnit:         req.PricePerUnit,
		TotalCost:            totalCost,
		Supplier:             strings.TrimSpace(req.Supplier),
	}
	if err := s.store.Create(ctx, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, deliverydomain.ErrDuplicateDelivery
		}
		return nil, err
	}

	s.log.Info("delivery recorded",
		zap.Int64("id", entity.ID.Int64()),
		zap.Int64("location_id", locID.Int64()),
		zap.String("quantity", entity.Quantity.String()),
	)
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req deliverydomain.UpdateRequest) (*deliverydomain.ResourceDelivery, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	quantity := item.Quantity
	price := item.PricePerUnit

	updates := map[string]any{}
	if req.DeliveryDate != nil {
		updates["delivery_date"] = truncateDate(*req.DeliveryDate)
	}
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, deliverydomain.ErrNonPositiveQuantity
		}
		quantity = *req.Quantity
		updates["quantity"] = quantity
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.PricePerUnit != nil {
		price = *req.PricePerUnit
		updates["price_per_unit"] = price
	}
	if req.Supplier != nil {
		updates["supplier"] = strings.TrimSpace(*req.Supplier)
	}
	if req.Quantity != nil || req.PricePerUnit != nil {
		updates["total_cost"] = quantity.Mul(price).Round(2)
	}

	if len(updates) == 0 {
		return item, nil
	}
	if err := s.store.Update(ctx, item.ID.Int64(), updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, deliverydomain.ErrDuplicateDelivery
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, item.ID.Int64())
}

func (s *Service) requireActiveLocation(ctx context.Context, id string) (snowflake.ID, error) {
	locID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, locationdomain.ErrInvalidID
	}
	loc, err := s.locationRepo.FindByID(ctx, s.db, locID)
	if err != nil {
		return 0, err
	}
	if loc == nil {
		return 0, locationdomain.ErrNotFound
	}
	if !loc.IsActive {
		return 0, locationdomain.ErrInactive
	}
	return locID, nil
}

func (s *Service) requireActiveResourceType(ctx context.Context, id string) (snowflake.ID, error) {
	typeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, resourcetypedomain.ErrInvalidID
	}
	rt, err := s.typeStore.FindOne(ctx, &resourcetypedomain.EnergyResourceType{ID: typeID})
	if err != nil {
		return 0, err
	}
	if rt == nil {
		return 0, resourcetypedomain.ErrNotFound
	}
	if !rt.IsActive {
		return 0, resourcetypedomain.ErrInactive
	}
	return typeID, nil
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
