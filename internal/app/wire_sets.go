//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"pluginsync/internal/domain"
	"pluginsync/internal/infra/host"
)

var CoreInfraSet = wire.NewSet(
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
	NewLoader,
)

var HostSet = wire.NewSet(
	NewStore,
	NewFetcher,
	NewLocalHost,
	wire.Bind(new(domain.HostState), new(*host.LocalHost)),
	NewDriver,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	HostSet,
	wire.Struct(new(ApplicationOptions), "*"),
	NewApplication,
)
