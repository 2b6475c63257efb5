// Package logger builds *slog.Logger instances for the notification services and
// provides attribute helpers so every component logs the same keys.
//
// New applies functional options (format, level, static attributes, context
// extractors) and wraps the selected slog handler with LogHandlerDecorator, which
// injects attributes pulled from the context on every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "notifyd"),
//	    logger.WithContextValue("request_id", requestIDKey),
//	)
//
//	log.LogAttrs(ctx, slog.LevelError, "Could not send email",
//	    logger.NotificationID(n.ID),
//	    logger.MessageID(msg.ID),
//	    logger.Error(err),
//	)
//
// Helpers such as Error, NotificationID and MessageID return an empty slog.Attr for
// nil or empty input, which slog drops, so callers need no extra checks.
//
// Discard returns a logger that drops everything; components use it as their default
// when no logger is configured.
package logger
