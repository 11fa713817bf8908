// Package instrumentation provides OpenTelemetry instrumentation for dzdrive.
//
// A Dropzone action runs once per drop, so telemetry is opt-in
// (INSTRUMENTATION_ENABLED=true) and flushed when the process shuts the
// provider down.
//
// # Metrics
//
//   - google_api_operations_total: Counter of Google API operations by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Google API operation durations
//   - oauth_auth_total: Counter of OAuth authorizations by result (success, failure, cached)
//   - drive_upload_bytes_total: Counter of uploaded bytes by status
//
// # Tracing
//
// Every Drive and Discovery call runs inside a "google.<service>.<operation>" client span.
//
// # Configuration
//
//   - INSTRUMENTATION_ENABLED: enable metrics and tracing (default: false)
//   - METRICS_EXPORTER: otlp, stdout, none (default: stdout)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector endpoint for the otlp exporters
//   - OTEL_EXPORTER_OTLP_INSECURE: plain HTTP towards the collector
//   - OTEL_TRACES_SAMPLER_ARG: trace sampling ratio (default: 1.0)
//
// The stdout exporters write to stderr: stdout carries the Dropzone protocol.
package instrumentation
