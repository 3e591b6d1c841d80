package delivery

import (
	"github.com/smallgrid/enerbill/internal/delivery/service"
	"go.uber.org/fx"
)

var Module = fx.Module("delivery.service",
	fx.Provide(service.New),
)
