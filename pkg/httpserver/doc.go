// Package httpserver runs an HTTP handler with graceful shutdown and
// provides liveness and readiness handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Run returns when ctx is cancelled or the process receives SIGINT or
// SIGTERM. Shutdown hooks run after in-flight requests have drained.
package httpserver
