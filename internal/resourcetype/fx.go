package resourcetype

import (
	"github.com/smallgrid/enerbill/internal/resourcetype/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resourcetype.service",
	fx.Provide(service.New),
)
