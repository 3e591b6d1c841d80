package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	"github.com/smallgrid/enerbill/pkg/db"
	"github.com/smallgrid/enerbill/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	store repository.Repository[resourcetypedomain.EnergyResourceType]
}

func New(p Params) resourcetypedomain.Service {
	return &Service{
		log:   p.Log.Named("resourcetype.service"),
		genID: p.GenID,
		store: repository.ProvideStore[resourcetypedomain.EnergyResourceType](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req resourcetypedomain.ListRequest) ([]resourcetypedomain.EnergyResourceType, error) {
	query := &resourcetypedomain.EnergyResourceType{}
	if req.Active != nil {
		query.IsActive = *req.Active
	}

	items, err := s.store.Find(ctx, query, "name ASC")
	if err != nil {
		return nil, err
	}

	out := make([]resourcetypedomain.EnergyResourceType, 0, len(items))
	name := strings.ToLower(strings.TrimSpace(req.Name))
	for _, item := range items {
		if name != "" && !strings.Contains(strings.ToLower(item.Name), name) {
			continue
		}
		if req.Active != nil && item.IsActive != *req.Active {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*resourcetypedomain.EnergyResourceType, error) {
	typeID, err := parseID(id)
	if err != nil {
		return nil, resourcetypedomain.ErrInvalidID
	}

	item, err := s.store.FindOne(ctx, &resourcetypedomain.EnergyResourceType{ID: typeID})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, resourcetypedomain.ErrNotFound
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req resourcetypedomain.CreateRequest) (*resourcetypedomain.EnergyResourceType, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, resourcetypedomain.ErrNameRequired
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, resourcetypedomain.ErrUnitRequired
	}

	existing, err := s.store.FindOne(ctx, &resourcetypedomain.EnergyResourceType{Name: name})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, resourcetypedomain.ErrNameTaken
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	entity := &resourcetypedomain.EnergyResourceType{
		ID:       s.genID.Generate(),
		Name:     name,
		Unit:     unit,
		IsActive: active,
	}
	if err := s.store.Create(ctx, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, resourcetypedomain.ErrNameTaken
		}
		return nil, err
	}

	s.log.Info("resource type created", zap.Int64("id", entity.ID.Int64()), zap.String("name", entity.Name))
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req resourcetypedomain.UpdateRequest) (*resourcetypedomain.EnergyResourceType, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, resourcetypedomain.ErrNameRequired
		}
		if name != item.Name {
			existing, err := s.store.FindOne(ctx, &resourcetypedomain.EnergyResourceType{Name: name})
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != item.ID {
				return nil, resourcetypedomain.ErrNameTaken
			}
		}
		updates["name"] = name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return nil, resourcetypedomain.ErrUnitRequired
		}
		updates["unit"] = unit
	}

	if len(updates) == 0 {
		return item, nil
	}

	if err := s.store.Update(ctx, item.ID.Int64(), updates); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, resourcetypedomain.ErrNameTaken
		}
		return nil, err
	}

	return s.Get(ctx, id)
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
