package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	"github.com/smallgrid/enerbill/internal/config"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	"github.com/smallgrid/enerbill/internal/reading/calc"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Cfg            config.Config
	GenID          *snowflake.Node
	Repo           readingdomain.Repository
	AssignmentRepo assignmentdomain.Repository
	MeterRepo      meterdomain.Repository
	LocationRepo   locationdomain.Repository
	TariffRepo     tariffdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	txTimeout      time.Duration
	repo           readingdomain.Repository
	assignmentRepo assignmentdomain.Repository
	meterRepo      meterdomain.Repository
	locationRepo   locationdomain.Repository
	tariffRepo     tariffdomain.Repository
}

func New(p Params) readingdomain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("reading.service"),
		genID:          p.GenID,
		txTimeout:      time.Duration(p.Cfg.TxTimeoutSeconds) * time.Second,
		repo:           p.Repo,
		assignmentRepo: p.AssignmentRepo,
		meterRepo:      p.MeterRepo,
		locationRepo:   p.LocationRepo,
		tariffRepo:     p.TariffRepo,
	}
}

func (s *Service) List(ctx context.Context, req readingdomain.ListRequest) ([]readingdomain.MeterReading, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Get(ctx context.Context, id string) (*readingdomain.MeterReading, error) {
	readingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, readingdomain.ErrInvalidID
	}

	m, err := s.repo.FindByID(ctx, s.db, readingID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, readingdomain.ErrNotFound
	}
	return m, nil
}

func (s *Service) Summary(ctx context.Context, req readingdomain.SummaryRequest) ([]readingdomain.SummaryRow, error) {
	return s.repo.Summary(ctx, s.db, req)
}

func (s *Service) Create(ctx context.Context, req readingdomain.CreateRequest) (*readingdomain.MeterReading, error) {
	assignID, err := snowflake.ParseString(strings.TrimSpace(req.MeterTenantID))
	if err != nil {
		return nil, assignmentdomain.ErrInvalidID
	}
	method, err := calc.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}

	var created *readingdomain.MeterReading
	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		chain, err := s.resolveChain(ctx, tx, assignID)
		if err != nil {
			return err
		}

		date := truncateDate(req.ReadingDate)
		previous := req.PreviousReading
		if previous == nil {
			prior, err := s.repo.FindLatestBefore(ctx, tx, assignID, date, 0)
			if err != nil {
				return err
			}
			if prior != nil {
				previous = &prior.CurrentReading
			}
		}

		tariff, err := s.resolveTariff(ctx, tx, chain, date)
		if err != nil {
			return err
		}

		entity, rows, err := s.assemble(assembleInput{
			id:       s.genID.Generate(),
			assignID: assignID,
			date:     date,
			current:  req.CurrentReading,
			previous: previous,
			method:   method,
			chain:    chain,
			tariff:   tariff,

			calcCoeff:     req.CalculationCoeff,
			energyCoeff:   req.EnergyCoeff,
			rentalArea:    req.RentalArea,
			areaPercent:   req.AreaPercentage,
			distributions: req.Distributions,

			notes:     req.Notes,
			actNumber: req.ActNumber,
			executor:  req.ExecutorName,
			tenantRep: req.TenantRepresentative,
			createdBy: req.CreatedBy,
			version:   1,
		})
		if err != nil {
			return err
		}

		if err := s.repo.Insert(ctx, tx, entity); err != nil {
			return err
		}
		if err := s.repo.ReplaceDistributions(ctx, tx, entity.ID, rows); err != nil {
			return err
		}
		entity.Distributions = rows
		created = entity
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("reading created",
		zap.Int64("id", created.ID.Int64()),
		zap.Int64("meter_tenant_id", assignID.Int64()),
		zap.String("total_cost", created.TotalCost.String()),
	)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, req readingdomain.UpdateRequest) (*readingdomain.MeterReading, error) {
	readingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, readingdomain.ErrInvalidID
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		current, err := s.repo.FindByID(ctx, tx, readingID)
		if err != nil {
			return err
		}
		if current == nil {
			return readingdomain.ErrNotFound
		}

		version := req.Version
		if version == 0 {
			version = current.Version
		}

		if !needsRecompute(req) {
			updates := auditUpdates(req)
			if len(updates) == 0 {
				return nil
			}
			ok, err := s.repo.UpdateVersioned(ctx, tx, readingID, version, updates)
			if err != nil {
				return err
			}
			if !ok {
				return readingdomain.ErrVersionConflict
			}
			return nil
		}

		chain, err := s.resolveChain(ctx, tx, current.MeterTenantID)
		if err != nil {
			return err
		}

		date := current.ReadingDate
		if req.ReadingDate != nil {
			date = truncateDate(*req.ReadingDate)
		}
		curVal := current.CurrentReading
		if req.CurrentReading != nil {
			curVal = *req.CurrentReading
		}
		previous := &current.PreviousReading
		if req.PreviousReading != nil {
			previous = req.PreviousReading
		} else if req.ReadingDate != nil {
			prior, err := s.repo.FindLatestBefore(ctx, tx, current.MeterTenantID, date, readingID)
			if err != nil {
				return err
			}
			previous = nil
			if prior != nil {
				previous = &prior.CurrentReading
			}
		}
		method := calc.Method(current.CalculationMethod)
		if req.Method != nil {
			method, err = calc.ParseMethod(*req.Method)
			if err != nil {
				return err
			}
		}

		tariff, err := s.resolveTariff(ctx, tx, chain, date)
		if err != nil {
			return err
		}

		calcCoeff := orDefault(req.CalculationCoeff, current.CalculationCoeff)
		energyCoeff := orDefault(req.EnergyCoeff, current.EnergyCoeff)
		areaPercent := orDefault(req.AreaPercentage, current.AreaPercentage)
		rentalArea := current.RentalArea
		if req.RentalArea != nil {
			rentalArea = req.RentalArea
		}
		distributions := distributionInputs(current.Distributions)
		if req.Distributions != nil {
			distributions = *req.Distributions
		}

		entity, rows, err := s.assemble(assembleInput{
			id:       readingID,
			assignID: current.MeterTenantID,
			date:     date,
			current:  curVal,
			previous: previous,
			method:   method,
			chain:    chain,
			tariff:   tariff,

			calcCoeff:     &calcCoeff,
			energyCoeff:   &energyCoeff,
			rentalArea:    rentalArea,
			areaPercent:   &areaPercent,
			distributions: distributions,

			notes:     orDefaultStr(req.Notes, current.Notes),
			actNumber: orDefaultStr(req.ActNumber, current.ActNumber),
			executor:  orDefaultStr(req.ExecutorName, current.ExecutorName),
			tenantRep: orDefaultStr(req.TenantRepresentative, current.TenantRepresentative),
			createdBy: current.CreatedBy,
			version:   version,
		})
		if err != nil {
			return err
		}

		ok, err := s.repo.UpdateVersioned(ctx, tx, readingID, version, map[string]any{
			"reading_date":                   entity.ReadingDate,
			"current_reading":                entity.CurrentReading,
			"previous_reading":               entity.PreviousReading,
			"consumption":                    entity.Consumption,
			"direct_consumption":             entity.DirectConsumption,
			"area_based_consumption":         entity.AreaBasedConsumption,
			"total_consumption":              entity.TotalConsumption,
			"unit_price":                     entity.UnitPrice,
			"total_cost":                     entity.TotalCost,
			"calculation_method":             entity.CalculationMethod,
			"calculation_coefficient":        entity.CalculationCoeff,
			"energy_consumption_coefficient": entity.EnergyCoeff,
			"rental_area":                    entity.RentalArea,
			"total_rented_area_percentage":   entity.AreaPercentage,
			"notes":                          entity.Notes,
			"act_number":                     entity.ActNumber,
			"executor_name":                  entity.ExecutorName,
			"tenant_representative":          entity.TenantRepresentative,
		})
		if err != nil {
			return err
		}
		if !ok {
			return readingdomain.ErrVersionConflict
		}
		return s.repo.ReplaceDistributions(ctx, tx, readingID, rows)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	readingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return readingdomain.ErrInvalidID
	}
	return s.inTx(ctx, func(ctx context.Context, tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, readingID)
		if err != nil {
			return err
		}
		if existing == nil {
			return readingdomain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, readingID)
	})
}

// inTx runs fn inside one transaction bounded by the configured
// timeout; every exit path commits or rolls back.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

type refChain struct {
	assignment *assignmentdomain.MeterTenant
	meter      *meterdomain.Meter
	location   *locationdomain.Location
}

func (s *Service) resolveChain(ctx context.Context, tx *gorm.DB, assignID snowflake.ID) (*refChain, error) {
	a, err := s.assignmentRepo.FindByID(ctx, tx, assignID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, readingdomain.ErrAssignmentNotFound
	}
	m, err := s.meterRepo.FindByID(ctx, tx, a.MeterID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, readingdomain.ErrMeterNotLinked
	}
	loc, err := s.locationRepo.FindByID(ctx, tx, m.LocationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, readingdomain.ErrMeterNotLinked
	}
	return &refChain{assignment: a, meter: m, location: loc}, nil
}

func (s *Service) resolveTariff(ctx context.Context, tx *gorm.DB, chain *refChain, date time.Time) (*tariffdomain.Tariff, error) {
	t, err := s.tariffRepo.FindApplicable(ctx, tx, chain.location.ID, chain.meter.EnergyResourceTypeID, date)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tariffdomain.ErrNoApplicableTariff
	}
	return t, nil
}

type assembleInput struct {
	id       snowflake.ID
	assignID snowflake.ID
	date     time.Time
	current  decimal.Decimal
	previous *decimal.Decimal
	method   calc.Method
	chain    *refChain
	tariff   *tariffdomain.Tariff

	calcCoeff     *decimal.Decimal
	energyCoeff   *decimal.Decimal
	rentalArea    *decimal.Decimal
	areaPercent   *decimal.Decimal
	distributions []readingdomain.DistributionInput

	notes     string
	actNumber string
	executor  string
	tenantRep string
	createdBy string
	version   int64
}

// assemble runs the whole computation and produces the persisted row
// plus its distribution rows, rounded to the stored precisions.
func (s *Service) assemble(in assembleInput) (*readingdomain.MeterReading, []readingdomain.MeterReadingDistribution, error) {
	calcCoeff := coeffOrOne(in.calcCoeff)
	energyCoeff := coeffOrOne(in.energyCoeff)
	areaPercent, err := areaWeight(in.areaPercent)
	if err != nil {
		return nil, nil, err
	}

	delta, err := calc.Delta(in.current, in.previous)
	if err != nil {
		return nil, nil, err
	}

	areaValue := decimal.Zero
	if in.rentalArea != nil {
		areaValue = *in.rentalArea
	} else if in.chain.location.OccupiedArea != nil {
		areaValue = *in.chain.location.OccupiedArea
	}

	result, err := calc.Compute(in.method, delta, calcCoeff, areaValue, energyCoeff, areaPercent)
	if err != nil {
		return nil, nil, err
	}
	total := result.Total()
	totalCost := calc.Cost(total, in.tariff.Price).Round(2)

	rows, distSum, err := s.buildDistributions(in, areaValue, energyCoeff)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) > 0 {
		totalCost = distSum
	}

	previous := decimal.Zero
	if in.previous != nil {
		previous = *in.previous
	}

	entity := &readingdomain.MeterReading{
		ID:                   in.id,
		MeterTenantID:        in.assignID,
		ReadingDate:          in.date,
		CurrentReading:       in.current.Round(4),
		PreviousReading:      previous.Round(4),
		Consumption:          delta.Round(4),
		DirectConsumption:    result.Direct.Round(4),
		AreaBasedConsumption: result.AreaBased.Round(4),
		TotalConsumption:     total.Round(4),
		UnitPrice:            in.tariff.Price,
		TotalCost:            totalCost,
		CalculationMethod:    string(in.method),
		CalculationCoeff:     calcCoeff,
		EnergyCoeff:          energyCoeff,
		RentalArea:           in.rentalArea,
		AreaPercentage:       areaPercent,
		Notes:                in.notes,
		ActNumber:            in.actNumber,
		ExecutorName:         in.executor,
		TenantRepresentative: in.tenantRep,
		Version:              in.version,
		CreatedBy:            in.createdBy,
	}
	return entity, rows, nil
}

// buildDistributions folds the category rows; when any exist, the
// reading's total cost is the sum of the rounded per-row costs.
func (s *Service) buildDistributions(in assembleInput, areaValue, energyCoeff decimal.Decimal) ([]readingdomain.MeterReadingDistribution, decimal.Decimal, error) {
	if len(in.distributions) == 0 {
		return nil, decimal.Zero, nil
	}

	rows := make([]readingdomain.MeterReadingDistribution, 0, len(in.distributions))
	sum := decimal.Zero
	for _, d := range in.distributions {
		category, err := readingdomain.ParseCategory(d.Category)
		if err != nil {
			return nil, decimal.Zero, err
		}

		method := in.method
		if d.Method != nil {
			method, err = calc.ParseMethod(*d.Method)
			if err != nil {
				return nil, decimal.Zero, err
			}
		}
		coeff := coeffOrOne(d.CalculationCoeff)
		percent, err := areaWeight(d.AreaPercentage)
		if err != nil {
			return nil, decimal.Zero, err
		}

		diff, err := calc.Delta(d.CurrentReading, &d.PreviousReading)
		if err != nil {
			return nil, decimal.Zero, err
		}
		result, err := calc.Compute(method, diff, coeff, areaValue, energyCoeff, percent)
		if err != nil {
			return nil, decimal.Zero, err
		}
		consumed := result.Total()
		cost := calc.Cost(consumed, in.tariff.Price).Round(2)
		sum = sum.Add(cost)

		rows = append(rows, readingdomain.MeterReadingDistribution{
			ID:               s.genID.Generate(),
			MeterReadingID:   in.id,
			Category:         category,
			CurrentReading:   d.CurrentReading.Round(4),
			PreviousReading:  d.PreviousReading.Round(4),
			Difference:       diff.Round(4),
			CalculationCoeff: coeff,
			AreaPercentage:   percent,
			ConsumedEnergy:   consumed.Round(4),
			Cost:             cost,
		})
	}
	return rows, sum, nil
}

func needsRecompute(req readingdomain.UpdateRequest) bool {
	return req.ReadingDate != nil ||
		req.CurrentReading != nil ||
		req.PreviousReading != nil ||
		req.Method != nil ||
		req.CalculationCoeff != nil ||
		req.EnergyCoeff != nil ||
		req.RentalArea != nil ||
		req.AreaPercentage != nil ||
		req.Distributions != nil
}

func auditUpdates(req readingdomain.UpdateRequest) map[string]any {
	updates := map[string]any{}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.ActNumber != nil {
		updates["act_number"] = *req.ActNumber
	}
	if req.ExecutorName != nil {
		updates["executor_name"] = *req.ExecutorName
	}
	if req.TenantRepresentative != nil {
		updates["tenant_representative"] = *req.TenantRepresentative
	}
	return updates
}

func distributionInputs(rows []readingdomain.MeterReadingDistribution) []readingdomain.DistributionInput {
	if len(rows) == 0 {
		return nil
	}
	out := make([]readingdomain.DistributionInput, 0, len(rows))
	for _, r := range rows {
		r := r
		out = append(out, readingdomain.DistributionInput{
			Category:         string(r.Category),
			CurrentReading:   r.CurrentReading,
			PreviousReading:  r.PreviousReading,
			CalculationCoeff: &r.CalculationCoeff,
			AreaPercentage:   &r.AreaPercentage,
		})
	}
	return out
}

func coeffOrOne(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.NewFromInt(1)
	}
	return *d
}

func areaWeight(d *decimal.Decimal) (decimal.Decimal, error) {
	if d == nil {
		return decimal.NewFromInt(100), nil
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, readingdomain.ErrInvalidAreaWeight
	}
	return *d, nil
}

func orDefault(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}

func orDefaultStr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
