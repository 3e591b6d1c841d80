package tariff

import (
	"github.com/smallgrid/enerbill/internal/tariff/repository"
	"github.com/smallgrid/enerbill/internal/tariff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
