package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/foliopress/foliopress/internal/clock"
	"github.com/foliopress/foliopress/internal/config"
	"github.com/foliopress/foliopress/internal/migration"
	"github.com/foliopress/foliopress/internal/observability"
	"github.com/foliopress/foliopress/internal/scheduler"
	"github.com/foliopress/foliopress/internal/server"
	"github.com/foliopress/foliopress/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
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
