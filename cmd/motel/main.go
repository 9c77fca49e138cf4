package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openmotel/motel/internal/billing"
	"github.com/openmotel/motel/internal/config"
	"github.com/openmotel/motel/internal/contract"
	"github.com/openmotel/motel/internal/db"
	"github.com/openmotel/motel/internal/logger"
	"github.com/openmotel/motel/internal/migration"
	obsmetrics "github.com/openmotel/motel/internal/observability/metrics"
	"github.com/openmotel/motel/internal/payment"
	"github.com/openmotel/motel/internal/reading"
	"github.com/openmotel/motel/internal/room"
	"github.com/openmotel/motel/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		migration.Module,
		obsmetrics.Module,

		room.Module,
		reading.Module,
		contract.Module,
		billing.Module,
		payment.Module,

		server.Module,
	)
	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
