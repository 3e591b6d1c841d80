package meter

import (
	"github.com/smallgrid/enerbill/internal/meter/repository"
	"github.com/smallgrid/enerbill/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
