package instrumentation

import (
	"log/slog"
	"time"
)

// ArchiveAudit captures all information about a cluster archive operation for
// audit logging. Archiving mutates the user's mailbox, so every operation is
// recorded with enough detail to reconstruct what happened.
//
// # Privacy Considerations
//
// The Account field may contain PII. When logging, consider:
//   - Using AccountDomain() to get only the domain for metrics/general logs
//   - Only logging full account names in audit-specific log streams
type ArchiveAudit struct {
	// Account is the mail account the operation ran against.
	Account string

	// ClusterID is the cluster that was archived.
	ClusterID int64

	// Requested is the number of messages the cluster contained.
	Requested int

	// Archived is the number of messages successfully archived.
	Archived int

	// Failed is the number of messages that could not be archived.
	Failed int

	// Execution details
	StartTime time.Time
	Duration  time.Duration
	Error     string

	// Tracing context
	TraceID string
	SpanID  string
}

// NewArchiveAudit creates a new ArchiveAudit with timing started.
// Call Complete() when the archive operation finishes.
func NewArchiveAudit(account string, clusterID int64) *ArchiveAudit {
	return &ArchiveAudit{
		Account:   account,
		ClusterID: clusterID,
		StartTime: time.Now(),
	}
}

// Complete records the outcome of the archive operation.
func (a *ArchiveAudit) Complete(archived, failed int, err error) *ArchiveAudit {
	a.Duration = time.Since(a.StartTime)
	a.Archived = archived
	a.Failed = failed
	if err != nil {
		a.Error = err.Error()
	}
	return a
}

// WithTracing sets the tracing context identifiers.
func (a *ArchiveAudit) WithTracing(traceID, spanID string) *ArchiveAudit {
	a.TraceID = traceID
	a.SpanID = spanID
	return a
}

// AccountDomain returns the domain portion of the account for
// lower-cardinality logging.
func (a *ArchiveAudit) AccountDomain() string {
	return ExtractUserDomain(a.Account)
}

// Status returns "success", "partial" or "error" based on the outcome.
func (a *ArchiveAudit) Status() string {
	switch {
	case a.Failed == 0 && a.Error == "":
		return StatusSuccess
	case a.Archived > 0:
		return StatusPartial
	default:
		return StatusError
	}
}

// LogAttrs returns slog attributes for structured logging.
// This provides a consistent set of fields for all archive operation logs.
func (a *ArchiveAudit) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int64("cluster_id", a.ClusterID),
		slog.Int("requested", a.Requested),
		slog.Int("archived", a.Archived),
		slog.Int("failed", a.Failed),
		slog.Duration("duration", a.Duration),
		slog.String("status", a.Status()),
	}

	// Add optional fields only if present
	if a.Account != "" && a.Account != "default" {
		attrs = append(attrs, slog.String("account_domain", a.AccountDomain()))
	}
	if a.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", a.TraceID))
	}
	if a.Error != "" {
		attrs = append(attrs, slog.String("error", a.Error))
	}

	return attrs
}
