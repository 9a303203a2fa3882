package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/cohortlens/cohortlens/internal/analytics"
	"github.com/cohortlens/cohortlens/internal/auth"
	"github.com/cohortlens/cohortlens/internal/clock"
	"github.com/cohortlens/cohortlens/internal/config"
	"github.com/cohortlens/cohortlens/internal/customer"
	"github.com/cohortlens/cohortlens/internal/feature"
	"github.com/cohortlens/cohortlens/internal/market"
	"github.com/cohortlens/cohortlens/internal/migration"
	"github.com/cohortlens/cohortlens/internal/observability"
	"github.com/cohortlens/cohortlens/internal/ratelimit"
	"github.com/cohortlens/cohortlens/internal/recommendation"
	"github.com/cohortlens/cohortlens/internal/server"
	"github.com/cohortlens/cohortlens/internal/subscription"
	"github.com/cohortlens/cohortlens/internal/usage"
	"github.com/cohortlens/cohortlens/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		subscription.Module,
		usage.Module,
		feature.Module,
		auth.Module,
		customer.Module,
		market.Module,
		analytics.Module,
		recommendation.Module,
		ratelimit.Module,

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
