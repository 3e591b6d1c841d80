package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"github.com/smallgrid/enerbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  tenantdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  tenantdomain.Repository
}

func New(p Params) tenantdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tenant.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req tenantdomain.ListRequest) ([]tenantdomain.Tenant, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, id string) (*tenantdomain.Tenant, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, tenantdomain.ErrInvalidID
	}

	t, err := s.repo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tenantdomain.ErrNotFound
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, req tenantdomain.CreateRequest) (*tenantdomain.Tenant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, tenantdomain.ErrNameRequired
	}

	existing, err := s.repo.FindByName(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, tenantdomain.ErrNameTaken
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	entity := &tenantdomain.Tenant{
		ID:            s.genID.Generate(),
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		IsActive:      active,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, tenantdomain.ErrNameTaken
		}
		return nil, err
	}

	s.log.Info("tenant created", zap.Int64("id", entity.ID.Int64()), zap.String("name", entity.Name))
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req tenantdomain.UpdateRequest) (*tenantdomain.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, tenantdomain.ErrNameRequired
		}
		if name != t.Name {
			existing, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != t.ID {
				return nil, tenantdomain.ErrNameTaken
			}
		}
		updates["name"] = name
	}
	if req.ContactPerson != nil {
		updates["contact_person"] = strings.TrimSpace(*req.ContactPerson)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}

	if len(updates) == 0 {
		return t, nil
	}

	if err := s.repo.Update(ctx, s.db, t.ID, updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, tenantdomain.ErrNameTaken
		}
		return nil, err
	}

	return s.Get(ctx, id)
}
