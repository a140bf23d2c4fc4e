// Package logger builds slog loggers for mtenant services.
//
// New creates a *slog.Logger configured by functional options: output format,
// level, static attributes and ContextExtractor callbacks. Extractors run on
// every record, which is how the active tenant scope ends up in log lines:
//
//	log := logger.New(
//	    logger.WithService("mtenantd", cfg.Env),
//	    logger.WithContextExtractors(tenancy.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "tenant added", logger.Tenant("acme"))
//
// Attribute helpers (Error, Tenant, CacheKey, Entity, Backend, Component)
// keep key names consistent. Error and Errors return an empty Attr for nil
// errors so callers can pass them unconditionally.
package logger
