package fx

import (
	"soloq-tracker/internal/api"
	"soloq-tracker/internal/config"
	"soloq-tracker/internal/fallback"
	"soloq-tracker/internal/logger"
	"soloq-tracker/internal/server"
	"soloq-tracker/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	// upstream
	fx.Provide(api.DefaultClientOptions),
	fx.Provide(fx.Annotate(api.NewClient, fx.As(fx.Self()), fx.As(new(server.RateLimitReporter)))),
	fx.Provide(fx.Annotate(api.NewRiotClient, fx.As(new(service.RiotAPI)))),
	// fallback
	fx.Provide(fallback.NewStructuredSource),
	fx.Provide(fallback.NewPageSource),
	fx.Provide(fallback.NewDefaultResolver),
	// svc
	fx.Provide(service.NewMatchFetcher),
	fx.Provide(fx.Annotate(service.NewReportService, fx.As(new(server.ReportBuilder)))),
	// server
	fx.Provide(server.NewPlayerServer),
)
