// Package logger builds the structured *slog.Logger used across detectkit.
//
// New creates a logger configured through functional options: output format
// (text or json), minimum level, environment presets, static attributes and
// ContextExtractor callbacks that pull values such as the request ID out of
// the context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("development", "detectctl"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "detection routed",
//	    logger.Mode("anonymous"),
//	    logger.VisitorID(visitorID),
//	)
//
// Attribute helpers in attr.go keep key names consistent between the
// transport, the router and the bootstrapper. Helpers that take optional
// values (Error, VisitorID, ResultID) return an empty slog.Attr when there is
// nothing to record, so callers can pass them unconditionally.
package logger
