// Package tracing configures OpenTelemetry tracing for detectkit clients.
//
// Tracing is opt-in. Setup with an empty endpoint, or with Enabled false,
// installs nothing and returns a no-op shutdown. Otherwise spans are batched
// to an OTLP/HTTP collector and W3C trace context is propagated on outgoing
// requests, which apiclient does for every backend call.
//
//	shutdown, err := tracing.Setup(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer shutdown(context.Background())
package tracing
