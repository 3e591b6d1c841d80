package tenant

import (
	"github.com/smallgrid/enerbill/internal/tenant/repository"
	"github.com/smallgrid/enerbill/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
