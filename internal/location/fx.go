package location

import (
	"github.com/smallgrid/enerbill/internal/location/repository"
	"github.com/smallgrid/enerbill/internal/location/service"
	"go.uber.org/fx"
)

var Module = fx.Module("location.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
