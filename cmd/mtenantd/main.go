// Command mtenantd serves a tenant-scoped notes API and a tenant registry
// administration API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mtenant/pkg/config"
	"github.com/dmitrymomot/mtenant/pkg/httpserver"
	"github.com/dmitrymomot/mtenant/pkg/logger"
	"github.com/dmitrymomot/mtenant/pkg/requestid"
	"github.com/dmitrymomot/mtenant/pkg/tenancy"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("mtenantd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithService(cfg.ServiceName, cfg.Env),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenancy.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(a.Close),
	)
	return srv.Run(ctx, newRouter(a))
}
