package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
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
	Repo         tariffdomain.Repository
	LocationRepo locationdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         tariffdomain.Repository
	locationRepo locationdomain.Repository
	typeStore    repository.Repository[resourcetypedomain.EnergyResourceType]
}

func New(p Params) tariffdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("tariff.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		locationRepo: p.LocationRepo,
		typeStore:    repository.ProvideStore[resourcetypedomain.EnergyResourceType](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req tariffdomain.ListRequest) ([]tariffdomain.Tariff, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, id string) (*tariffdomain.Tariff, error) {
	tariffID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, tariffdomain.ErrInvalidID
	}

	t, err := s.repo.FindByID(ctx, s.db, tariffID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tariffdomain.ErrNotFound
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, req tariffdomain.CreateRequest) (*tariffdomain.Tariff, error) {
	locID, err := s.requireActiveLocation(ctx, req.LocationID)
	if err != nil {
		return nil, err
	}
	typeID, err := s.requireActiveResourceType(ctx, req.ResourceTypeID)
	if err != nil {
		return nil, err
	}
	if !req.Price.IsPositive() {
		return nil, tariffdomain.ErrNonPositivePrice
	}

	from := truncateDate(req.ValidFrom)
	to := normalizeEnd(req.ValidTo)
	if to != nil && to.Before(from) {
		return nil, tariffdomain.ErrInvalidInterval
	}

	entity := &tariffdomain.Tariff{
		ID:                   s.genID.Generate(),
		LocationID:           locID,
		EnergyResourceTypeID: typeID,
		Price:                req.Price,
		ValidFrom:            from,
		ValidTo:              to,
		Version:              1,
	}

	// Overlap check and insert share one transaction so a concurrent
	// create cannot slip a conflicting period in between.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conflict, err := s.repo.FindOverlapping(ctx, tx, locID, typeID, from, to, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return tariffdomain.ErrOverlappingPeriod
		}
		return s.repo.Insert(ctx, tx, entity)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tariff created",
		zap.Int64("id", entity.ID.Int64()),
		zap.Int64("location_id", locID.Int64()),
		zap.String("price", entity.Price.String()),
	)
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req tariffdomain.UpdateRequest) (*tariffdomain.Tariff, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from, to := t.ValidFrom, t.ValidTo

	updates := map[string]any{}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, tariffdomain.ErrNonPositivePrice
		}
		updates["price"] = *req.Price
	}
	if req.ValidFrom != nil {
		from = truncateDate(*req.ValidFrom)
		updates["valid_from"] = from
	}
	if req.ClearEnd {
		to = nil
		updates["valid_to"] = gorm.Expr("NULL")
	} else if req.ValidTo != nil {
		to = normalizeEnd(req.ValidTo)
		updates["valid_to"] = *to
	}

	if len(updates) == 0 {
		return t, nil
	}
	if to != nil && to.Before(from) {
		return nil, tariffdomain.ErrInvalidInterval
	}

	version := req.Version
	if version == 0 {
		version = t.Version
	}

	var updated *tariffdomain.Tariff
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conflict, err := s.repo.FindOverlapping(ctx, tx, t.LocationID, t.EnergyResourceTypeID, from, to, t.ID)
		if err != nil {
			return err
		}
		if conflict != nil {
			return tariffdomain.ErrOverlappingPeriod
		}
		ok, err := s.repo.UpdateVersioned(ctx, tx, t.ID, version, updates)
		if err != nil {
			return err
		}
		if !ok {
			return tariffdomain.ErrVersionConflict
		}
		updated, err = s.repo.FindByID(ctx, tx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, tariffdomain.ErrNotFound
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, t.ID)
}

func (s *Service) Resolve(ctx context.Context, req tariffdomain.ResolveRequest) (*tariffdomain.Tariff, error) {
	locID, err := snowflake.ParseString(strings.TrimSpace(req.LocationID))
	if err != nil {
		return nil, locationdomain.ErrInvalidID
	}
	typeID, err := snowflake.ParseString(strings.TrimSpace(req.ResourceTypeID))
	if err != nil {
		return nil, resourcetypedomain.ErrInvalidID
	}

	t, err := s.repo.FindApplicable(ctx, s.db, locID, typeID, truncateDate(req.OnDate))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tariffdomain.ErrNoApplicableTariff
	}
	return t, nil
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

func normalizeEnd(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := truncateDate(*t)
	return &d
}
