// Package logger provides a small factory around log/slog used across
// notifykit components, plus attribute helpers for the domain's common
// log fields (subscriber, event name, notification id).
//
// # Usage
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithTextFormatter(),
//	    logger.WithAttr(slog.String("service", "feed")),
//	)
//	log.Info("notification stored", logger.SubscriberID("sub-1"))
//
// Context extractors allow request-scoped values to be attached to every
// record automatically:
//
//	log := logger.New(logger.WithContextValue("request_id", requestIDKey))
package logger
