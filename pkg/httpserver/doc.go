// Package httpserver runs the service's HTTP listener.
//
// Server binds the configured address, serves until the Run context ends and
// then drains in-flight requests within the shutdown timeout. Listen errors
// are wrapped with ErrStart and drain errors with ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler back the /healthz and /readyz probes;
// readiness takes named checks such as pg.Healthcheck.
package httpserver
