package assignment

import (
	"github.com/smallgrid/enerbill/internal/assignment/repository"
	"github.com/smallgrid/enerbill/internal/assignment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
