package cascade

import (
	"github.com/smallgrid/enerbill/internal/cascade/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cascade.service",
	fx.Provide(service.New),
)
