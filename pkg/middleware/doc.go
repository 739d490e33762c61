// Package middleware provides observability for livecoll event feeds.
//
// A Middleware wraps a protocol.Sink. Feeds in pkg/stream compose them in
// front of their own sink:
//
//	sink := middleware.Chain(
//	    middleware.Logging(logger),
//	    metrics.Middleware(),
//	    tracing.Middleware(),
//	)(feed.publish)
//
// # Prometheus Metrics
//
// NewMetrics registers the livecoll metrics on a registry:
//   - livecoll_events_total: Events delivered by collection and kind
//   - livecoll_event_delivery_seconds: Time spent delivering one event
//   - livecoll_ops_total: Operations applied by target and status
//   - livecoll_active_clients: Connected feed clients
//   - livecoll_queue_overflows_total: Clients dropped for falling behind
//   - livecoll_resumes_total: Reconnections by outcome
//   - livecoll_websocket_errors_total: WebSocket errors by type
//
// Expose them with promhttp:
//
//	reg := prometheus.NewRegistry()
//	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry
//
// NewTracing starts a span for every delivered event and every applied
// operation, using the global tracer provider. Configure it in main()
// before starting the server:
//
//	otel.SetTracerProvider(tp)
//	tracing := middleware.NewTracing(middleware.WithTracerName("my-feed"))
package middleware
