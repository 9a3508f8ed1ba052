// Package instrumentation provides OpenTelemetry instrumentation for the
// inboxgroups application.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for Gmail API calls, clustering runs and archive operations
//   - Distributed tracing for the clustering pipeline and API calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Gmail API Metrics:
//   - gmail_api_operations_total: Counter of Gmail API operations by operation, status
//   - gmail_api_operation_duration_seconds: Histogram of Gmail API operation durations
//
// Clustering Metrics:
//   - clustering_runs_total: Counter of clustering pipeline runs by status
//   - clustering_duration_seconds: Histogram of pipeline durations
//   - clustering_messages: Histogram of corpus sizes per run
//
// Archive Metrics:
//   - archive_operations_total: Counter of cluster archive operations by result
//   - archived_messages_total: Counter of messages archived
//
// OAuth Authentication Metrics:
//   - oauth_auth_total: Counter of OAuth authentication events by result
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxgroups)
package instrumentation
