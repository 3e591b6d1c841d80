package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"github.com/smallgrid/enerbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       locationdomain.Repository
	TenantRepo tenantdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       locationdomain.Repository
	tenantRepo tenantdomain.Repository
}

func New(p Params) locationdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("location.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		tenantRepo: p.TenantRepo,
	}
}

func (s *Service) List(ctx context.Context, req locationdomain.ListRequest) ([]locationdomain.Location, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, id string) (*locationdomain.Location, error) {
	locID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, locationdomain.ErrInvalidID
	}

	loc, err := s.repo.FindByID(ctx, s.db, locID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, locationdomain.ErrNotFound
	}
	return loc, nil
}

func (s *Service) Create(ctx context.Context, req locationdomain.CreateRequest) (*locationdomain.Location, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, locationdomain.ErrNameRequired
	}
	if req.OccupiedArea != nil && req.OccupiedArea.IsNegative() {
		return nil, locationdomain.ErrNegativeArea
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, locationdomain.ErrNameTaken
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	entity := &locationdomain.Location{
		ID:           s.genID.Generate(),
		Name:         name,
		Address:      strings.TrimSpace(req.Address),
		OccupiedArea: req.OccupiedArea,
		IsActive:     active,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, locationdomain.ErrNameTaken
		}
		return nil, err
	}

	s.log.Info("location created", zap.Int64("id", entity.ID.Int64()), zap.String("name", entity.Name))
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req locationdomain.UpdateRequest) (*locationdomain.Location, error) {
	loc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, locationdomain.ErrNameRequired
		}
		if name != loc.Name {
			existing, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != loc.ID {
				return nil, locationdomain.ErrNameTaken
			}
		}
		updates["name"] = name
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.OccupiedArea != nil {
		if req.OccupiedArea.IsNegative() {
			return nil, locationdomain.ErrNegativeArea
		}
		updates["occupied_area"] = *req.OccupiedArea
	}

	if len(updates) == 0 {
		return loc, nil
	}

	if err := s.repo.Update(ctx, s.db, loc.ID, updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, locationdomain.ErrNameTaken
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) AssignTenant(ctx context.Context, locationID, tenantID string) (*locationdomain.Location, error) {
	loc, err := s.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}

	tid, err := snowflake.ParseString(strings.TrimSpace(tenantID))
	if err != nil {
		return nil, tenantdomain.ErrInvalidID
	}
	tenant, err := s.tenantRepo.FindByID(ctx, s.db, tid)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrNotFound
	}
	if !tenant.IsActive {
		return nil, tenantdomain.ErrInactive
	}

	if err := s.repo.Update(ctx, s.db, loc.ID, map[string]any{"tenant_id": tid}); err != nil {
		return nil, err
	}
	return s.Get(ctx, locationID)
}

func (s *Service) UnassignTenant(ctx context.Context, locationID string) (*locationdomain.Location, error) {
	loc, err := s.Get(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, s.db, loc.ID, map[string]any{"tenant_id": nil}); err != nil {
		return nil, err
	}
	return s.Get(ctx, locationID)
}
