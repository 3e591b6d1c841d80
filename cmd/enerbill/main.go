package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallgrid/enerbill/internal/clock"
	"github.com/smallgrid/enerbill/internal/config"
	"github.com/smallgrid/enerbill/internal/logger"
	"github.com/smallgrid/enerbill/internal/migration"
	"github.com/smallgrid/enerbill/internal/server"
	"github.com/smallgrid/enerbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
