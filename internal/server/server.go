package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallgrid/enerbill/internal/assignment"
	assignmentdomain "github.com/smallgrid/enerbill/internal/assignment/domain"
	"github.com/smallgrid/enerbill/internal/cascade"
	cascadedomain "github.com/smallgrid/enerbill/internal/cascade/domain"
	"github.com/smallgrid/enerbill/internal/clock"
	"github.com/smallgrid/enerbill/internal/config"
	"github.com/smallgrid/enerbill/internal/delivery"
	deliverydomain "github.com/smallgrid/enerbill/internal/delivery/domain"
	"github.com/smallgrid/enerbill/internal/location"
	locationdomain "github.com/smallgrid/enerbill/internal/location/domain"
	"github.com/smallgrid/enerbill/internal/meter"
	meterdomain "github.com/smallgrid/enerbill/internal/meter/domain"
	"github.com/smallgrid/enerbill/internal/metrics"
	"github.com/smallgrid/enerbill/internal/ratelimit"
	"github.com/smallgrid/enerbill/internal/reading"
	readingdomain "github.com/smallgrid/enerbill/internal/reading/domain"
	"github.com/smallgrid/enerbill/internal/resourcetype"
	resourcetypedomain "github.com/smallgrid/enerbill/internal/resourcetype/domain"
	"github.com/smallgrid/enerbill/internal/tariff"
	tariffdomain "github.com/smallgrid/enerbill/internal/tariff/domain"
	"github.com/smallgrid/enerbill/internal/tenant"
	tenantdomain "github.com/smallgrid/enerbill/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	metrics.Module,
	ratelimit.Module,
	resourcetype.Module,
	tenant.Module,
	location.Module,
	meter.Module,
	assignment.Module,
	tariff.Module,
	reading.Module,
	delivery.Module,
	cascade.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogMiddleware(log))
	r.Use(metrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	clock           clock.Clock
	limiter         *ratelimit.MutationLimiter
	resourceTypeSvc resourcetypedomain.Service
	tenantSvc       tenantdomain.Service
	locationSvc     locationdomain.Service
	meterSvc        meterdomain.Service
	assignmentSvc   assignmentdomain.Service
	tariffSvc       tariffdomain.Service
	readingSvc      readingdomain.Service
	deliverySvc     deliverydomain.Service
	cascadeSvc      cascadedomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	Clock           clock.Clock
	Limiter         *ratelimit.MutationLimiter
	ResourceTypeSvc resourcetypedomain.Service
	TenantSvc       tenantdomain.Service
	LocationSvc     locationdomain.Service
	MeterSvc        meterdomain.Service
	AssignmentSvc   assignmentdomain.Service
	TariffSvc       tariffdomain.Service
	ReadingSvc      readingdomain.Service
	DeliverySvc     deliverydomain.Service
	CascadeSvc      cascadedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clock:           p.Clock,
		limiter:         p.Limiter,
		resourceTypeSvc: p.ResourceTypeSvc,
		tenantSvc:       p.TenantSvc,
		locationSvc:     p.LocationSvc,
		meterSvc:        p.MeterSvc,
		assignmentSvc:   p.AssignmentSvc,
		tariffSvc:       p.TariffSvc,
		readingSvc:      p.ReadingSvc,
		deliverySvc:     p.DeliverySvc,
		cascadeSvc:      p.CascadeSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	write := RateLimitMiddleware(s.limiter)

	types := api.Group("/resource-types")
	{
		types.GET("", s.ListResourceTypes)
		types.GET("/:id", s.GetResourceType)
		types.POST("", write, s.CreateResourceType)
		types.PATCH("/:id", write, s.UpdateResourceType)
		types.GET("/:id/dependencies", s.ResourceTypeDependencies)
		types.POST("/:id/deactivate", write, s.DeactivateResourceType)
		types.DELETE("/:id", write, s.DeleteResourceType)
	}

	tenants := api.Group("/tenants")
	{
		tenants.GET("", s.ListTenants)
		tenants.GET("/:id", s.GetTenant)
		tenants.POST("", write, s.CreateTenant)
		tenants.PATCH("/:id", write, s.UpdateTenant)
		tenants.GET("/:id/dependencies", s.TenantDependencies)
		tenants.POST("/:id/deactivate", write, s.DeactivateTenant)
		tenants.DELETE("/:id", write, s.DeleteTenant)
	}

	locations := api.Group("/locations")
	{
		locations.GET("", s.ListLocations)
		locations.GET("/:id", s.GetLocation)
		locations.POST("", write, s.CreateLocation)
		locations.PATCH("/:id", write, s.UpdateLocation)
		locations.POST("/:id/tenant", write, s.AssignLocationTenant)
		locations.DELETE("/:id/tenant", write, s.UnassignLocationTenant)
		locations.GET("/:id/dependencies", s.LocationDependencies)
		locations.POST("/:id/deactivate", write, s.DeactivateLocation)
		locations.DELETE("/:id", write, s.DeleteLocation)
	}

	meters := api.Group("/meters")
	{
		meters.GET("", s.ListMeters)
		meters.GET("/:id", s.GetMeter)
		meters.POST("", write, s.CreateMeter)
		meters.PATCH("/:id", write, s.UpdateMeter)
		meters.GET("/:id/dependencies", s.MeterDependencies)
		meters.POST("/:id/deactivate", write, s.DeactivateMeter)
		meters.DELETE("/:id", write, s.DeleteMeter)
	}

	assignments := api.Group("/assignments")
	{
		assignments.GET("", s.ListAssignments)
		assignments.GET("/:id", s.GetAssignment)
		assignments.POST("", write, s.CreateAssignment)
		assignments.PATCH("/:id", write, s.UpdateAssignment)
		assignments.DELETE("/:id", write, s.DeleteAssignment)
	}

	tariffs := api.Group("/tariffs")
	{
		tariffs.GET("", s.ListTariffs)
		tariffs.GET("/resolve", s.ResolveTariff)
		tariffs.GET("/:id", s.GetTariff)
		tariffs.POST("", write, s.CreateTariff)
		tariffs.PATCH("/:id", write, s.UpdateTariff)
		tariffs.DELETE("/:id", write, s.DeleteTariff)
	}

	readings := api.Group("/readings")
	{
		readings.GET("", s.ListReadings)
		readings.GET("/summary", s.ReadingSummary)
		readings.GET("/:id", s.GetReading)
		readings.POST("", write, s.CreateReading)
		readings.PATCH("/:id", write, s.UpdateReading)
		readings.DELETE("/:id", write, s.DeleteReading)
	}

	deliveries := api.Group("/deliveries")
	{
		deliveries.GET("", s.ListDeliveries)
		deliveries.GET("/:id", s.GetDelivery)
		deliveries.POST("", write, s.CreateDelivery)
		deliveries.PATCH("/:id", write, s.UpdateDelivery)
		deliveries.DELETE("/:id", write, s.DeleteDelivery)
	}
}
