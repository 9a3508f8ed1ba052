package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency and DRY
const (
	attrStatus    = "status"
	attrOperation = "operation"
	attrResult    = "result"
	attrAccount   = "account"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// Gmail API metrics
	gmailAPIOperationsTotal   metric.Int64Counter
	gmailAPIOperationDuration metric.Float64Histogram

	// Clustering pipeline metrics
	clusteringRunsTotal metric.Int64Counter
	clusteringDuration  metric.Float64Histogram
	clusteringMessages  metric.Int64Histogram

	// Archive metrics
	archiveOperationsTotal metric.Int64Counter
	archivedMessagesTotal  metric.Int64Counter

	// OAuth metrics
	oauthAuthTotal metric.Int64Counter

	// detailedLabels controls whether high-cardinality labels are included
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	// Gmail API Metrics
	m.gmailAPIOperationsTotal, err = meter.Int64Counter(
		"gmail_api_operations_total",
		metric.WithDescription("Total number of Gmail API operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operations_total counter: %w", err)
	}

	m.gmailAPIOperationDuration, err = meter.Float64Histogram(
		"gmail_api_operation_duration_seconds",
		metric.WithDescription("Gmail API operation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail_api_operation_duration_seconds histogram: %w", err)
	}

	// Clustering Metrics
	m.clusteringRunsTotal, err = meter.Int64Counter(
		"clustering_runs_total",
		metric.WithDescription("Total number of clustering pipeline runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clustering_runs_total counter: %w", err)
	}

	m.clusteringDuration, err = meter.Float64Histogram(
		"clustering_duration_seconds",
		metric.WithDescription("Clustering pipeline duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clustering_duration_seconds histogram: %w", err)
	}

	m.clusteringMessages, err = meter.Int64Histogram(
		"clustering_messages",
		metric.WithDescription("Number of messages per clustering run"),
		metric.WithUnit("{message}"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 150, 200),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clustering_messages histogram: %w", err)
	}

	// Archive Metrics
	m.archiveOperationsTotal, err = meter.Int64Counter(
		"archive_operations_total",
		metric.WithDescription("Total number of cluster archive operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive_operations_total counter: %w", err)
	}

	m.archivedMessagesTotal, err = meter.Int64Counter(
		"archived_messages_total",
		metric.WithDescription("Total number of messages archived"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create archived_messages_total counter: %w", err)
	}

	// OAuth Metrics
	m.oauthAuthTotal, err = meter.Int64Counter(
		"oauth_auth_total",
		metric.WithDescription("Total number of OAuth authentication attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_auth_total counter: %w", err)
	}

	return m, nil
}

// RecordGmailOperation records a Gmail API operation with operation type,
// status, and duration.
//
// Parameters:
//   - operation: Operation type (list, get, modify)
//   - status: Result status ("success" or "error")
//   - duration: Time taken for the operation
func (m *Metrics) RecordGmailOperation(ctx context.Context, operation, status string, duration time.Duration) {
	if m.gmailAPIOperationsTotal == nil || m.gmailAPIOperationDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	}

	m.gmailAPIOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.gmailAPIOperationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordClusteringRun records a clustering pipeline run with status, corpus
// size, and duration.
func (m *Metrics) RecordClusteringRun(ctx context.Context, status string, messages int, duration time.Duration) {
	if m.clusteringRunsTotal == nil || m.clusteringDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.clusteringRunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.clusteringDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.clusteringMessages.Record(ctx, int64(messages), metric.WithAttributes(attrs...))
}

// RecordArchiveOperation records a cluster archive operation with result and
// the number of messages archived.
//
// Result should be one of: "success", "partial", "error". The account is only
// included as a label when detailedLabels is enabled.
func (m *Metrics) RecordArchiveOperation(ctx context.Context, result, account string, archived int) {
	if m.archiveOperationsTotal == nil || m.archivedMessagesTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	// Only add high-cardinality labels if explicitly enabled
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	m.archiveOperationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	if archived > 0 {
		m.archivedMessagesTotal.Add(ctx, int64(archived), metric.WithAttributes(attrs...))
	}
}

// RecordOAuthAuth records an OAuth authentication attempt with result.
// Result should be one of: "success", "failure"
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrResult, result),
	}

	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}
