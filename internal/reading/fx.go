package reading

import (
	"github.com/smallgrid/enerbill/internal/reading/repository"
	"github.com/smallgrid/enerbill/internal/reading/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reading.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
