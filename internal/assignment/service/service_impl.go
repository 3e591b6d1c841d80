package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	"github.com/smallgrid/enerbill/internal/clock"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       assignmentdomain.Repository
	MeterRepo  meterdomain.Repository
	TenantRepo tenantdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       assignmentdomain.Repository
	meterRepo  meterdomain.Repository
	tenantRepo tenantdomain.Repository
}

func New(p Params) assignmentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("assignment.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		meterRepo:  p.MeterRepo,
		tenantRepo: p.TenantRepo,
	}
}

func (s *Service) List(ctx context.Context, req assignmentdomain.ListRequest) ([]assignmentdomain.MeterTenant, error) {
	return s.repo.List(ctx, s.db, req, s.clock.Now())
}

func (s *Service) Get(ctx context.Context, id string) (*assignmentdomain.MeterTenant, error) {
	assignID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, assignmentdomain.ErrInvalidID
	}

	a, err := s.repo.FindByID(ctx, s.db, assignID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, assignmentdomain.ErrNotFound
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, req assignmentdomain.CreateRequest) (*assignmentdomain.MeterTenant, error) {
	meterID, err := s.requireActiveMeter(ctx, req.MeterID)
	if err != nil {
		return nil, err
	}
	tenantID, err := s.requireActiveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	from := truncateDate(req.AssignedFrom)
	to := normalizeEnd(req.AssignedTo)
	if err := checkInterval(from, to); err != nil {
		return nil, err
	}

	conflict, err := s.repo.FindOverlapping(ctx, s.db, meterID, tenantID, from, to, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, assignmentdomain.ErrOverlap
	}

	entity := &assignmentdomain.MeterTenant{
		ID:           s.genID.Generate(),
		MeterID:      meterID,
		TenantID:     tenantID,
		AssignedFrom: from,
		AssignedTo:   to,
	}
	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("assignment created",
		zap.Int64("id", entity.ID.Int64()),
		zap.Int64("meter_id", meterID.Int64()),
		zap.Int64("tenant_id", tenantID.Int64()),
	)
	return entity, nil
}

func (s *Service) Update(ctx context.Context, id string, req assignmentdomain.UpdateRequest) (*assignmentdomain.MeterTenant, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	meterID, tenantID := a.MeterID, a.TenantID
	from, to := a.AssignedFrom, a.AssignedTo

	updates := map[string]any{}
	if req.MeterID != nil {
		meterID, err = s.requireActiveMeter(ctx, *req.MeterID)
		if err != nil {
			return nil, err
		}
		updates["meter_id"] = meterID
	}
	if req.TenantID != nil {
		tenantID, err = s.requireActiveTenant(ctx, *req.TenantID)
		if err != nil {
			return nil, err
		}
		updates["tenant_id"] = tenantID
	}
	if req.AssignedFrom != nil {
		from = truncateDate(*req.AssignedFrom)
		updates["assigned_from"] = from
	}
	if req.ClearEnd {
		to = nil
		updates["assigned_to"] = gorm.Expr("NULL")
	} else if req.AssignedTo != nil {
		to = normalizeEnd(req.AssignedTo)
		updates["assigned_to"] = *to
	}

	if len(updates) == 0 {
		return a, nil
	}
	if err := checkInterval(from, to); err != nil {
		return nil, err
	}

	conflict, err := s.repo.FindOverlapping(ctx, s.db, meterID, tenantID, from, to, a.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, assignmentdomain.ErrOverlap
	}

	if err := s.repo.Update(ctx, s.db, a.ID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, s.db, a.ID)
}

func (s *Service) requireActiveMeter(ctx context.Context, id string) (snowflake.ID, error) {
	meterID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, meterdomain.ErrInvalidID
	}
	m, err := s.meterRepo.FindByID(ctx, s.db, meterID)
	if err != nil {
		return 0, err
	}
	if m == nil {
		return 0, meterdomain.ErrNotFound
	}
	if !m.IsActive {
		return 0, meterdomain.ErrInactive
	}
	return meterID, nil
}

func (s *Service) requireActiveTenant(ctx context.Context, id string) (snowflake.ID, error) {
	tenantID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return 0, tenantdomain.ErrInvalidID
	}
	t, err := s.tenantRepo.FindByID(ctx, s.db, tenantID)
	if err != nil {
		return 0, err
	}
	if t == nil {
		return 0, tenantdomain.ErrNotFound
	}
	if !t.IsActive {
		return 0, tenantdomain.ErrInactive
	}
	return tenantID, nil
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

func checkInterval(from time.Time, to *time.Time) error {
	if to != nil && to.Before(from) {
		return assignmentdomain.ErrInvalidInterval
	}
	return nil
}
