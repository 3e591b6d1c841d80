package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
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
	Repo         meterdomain.Repository
	LocationRepo locationdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         meterdomain.Repository
	locationRepo locationdomain.Repository
	typeStore    repository.Repository[resourcetypedomain.EnergyResourceType]
}

func New(p Params) meterdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("meter.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		locationRepo: p.LocationRepo,
		typeStore:    repository.ProvideStore[resourcetypedomain.EnergyResourceType](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req meterdomain.ListRequest) ([]meterdomain.Meter, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, id string) (*meterdomain.Meter, error) {
	meterID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, meterdomain.ErrInvalidID
	}

	m, err := s.repo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, meterdomain.ErrNotFound
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, req meterdomain.CreateRequest) (*meterdomain.Meter, error) {
	serial := strings.TrimSpace(req.SerialNumber)
	if serial == "" {
		return nil, meterdomain.ErrSerialRequired
	}

	existing, err := s.repo.FindBySerial(ctx, s.db, serial)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, meterdomain.ErrSerialTaken
	}

	locID, err := s.requireActiveLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	typeID, err := s.requireActiveResourceType(ctx, req.ResourceTypeID)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	entity := &meterdomain.Meter{
		ID:                   s.genID.Generate(),
		SerialNumber:         serial,
		LocationID:           locID,
		EnergyResourceTypeID: typeID,
		IsActive:             active,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, meterdomain.ErrSerialTaken
		}
		return nil, err
	}

	s.log.Info("meter created", zap.Int64("id", entity.ID.Int64()), zap.String("serial", entity.SerialNumber))
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req meterdomain.UpdateRequest) (*meterdomain.Meter, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.SerialNumber != nil {
		serial := strings.TrimSpace(*req.SerialNumber)
		if serial == "" {
			return nil, meterdomain.ErrSerialRequired
		}
		if serial != m.SerialNumber {
			existing, err := s.repo.FindBySerial(ctx, s.db, serial)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != m.ID {
				return nil, meterdomain.ErrSerialTaken
			}
		}
		updates["serial_number"] = serial
	}
	if req.LocationID != nil {
		locID, err := s.requireActiveLocation(ctx, *req.LocationID)
		if err != nil {
			return nil, err
		}
		updates["location_id"] = locID
	}
	if req.ResourceTypeID != nil {
		typeID, err := s.requireActiveResourceType(ctx, *req.ResourceTypeID)
		if err != nil {
			return nil, err
		}
		updates["energy_resource_type_id"] = typeID
	}

	if len(updates) == 0 {
		return m, nil
	}

	if err := s.repo.Update(ctx, s.db, m.ID, updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, meterdomain.ErrSerialTaken
		}
		return nil, err
	}

	return s.Get(ctx, id)
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
