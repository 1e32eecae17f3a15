//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"updatescan/internal"
	"updatescan/internal/alarm"
	"updatescan/internal/autoscan"
	"updatescan/internal/controllers"
	"updatescan/internal/notify"
	"updatescan/internal/providers"
	"updatescan/internal/scan"
	"updatescan/internal/services"
	"updatescan/internal/store"
	"updatescan/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewSettingsProvider,
		providers.NewClock,

		store.NewPageStore,
		scan.NewHTTPFetcher,
		wire.Bind(new(scan.Fetcher), new(*scan.HTTPFetcher)),
		scan.NewScanner,
		notify.NewNotifier,
		alarm.NewService,
		autoscan.NewScheduler,
		services.NewPageService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
