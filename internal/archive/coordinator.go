package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/teemow/inboxgroups/internal/cache"
	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/logging"
)

const (
	// DefaultWorkers is the number of concurrent label mutations.
	DefaultWorkers = 4

	// defaultMaxTries bounds retries per message, including the first attempt.
	defaultMaxTries = 3

	defaultRetryInterval = 500 * time.Millisecond
)

// ErrNoMessages is returned when a cluster id does not resolve to any
// cached messages.
var ErrNoMessages = errors.New("cluster has no messages")

// Transport mutates message labels in the remote mailbox.
type Transport interface {
	ModifyLabels(ctx context.Context, externalID string, add, remove []string) error
}

// Config holds configuration for a Coordinator.
type Config struct {
	// Workers is the number of concurrent label mutations (default: 4).
	Workers int

	// Account is the mail account, used for audit logging and metrics.
	Account string

	// RetryInterval is the initial backoff interval between retries.
	RetryInterval time.Duration

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records archive operation metrics. May be nil.
	Metrics *instrumentation.Metrics
}

// Coordinator archives the messages of a cluster against the remote mailbox
// and records the outcome in the local cache.
type Coordinator struct {
	store     *cache.Store
	transport Transport

	workers       int
	maxTries      uint
	retryInterval time.Duration
	account       string
	logger        *slog.Logger
	metrics       *instrumentation.Metrics
}

// Result describes the outcome of archiving a cluster. ID slices are sorted
// for deterministic output.
type Result struct {
	// ArchivedIDs are the messages archived by this call.
	ArchivedIDs []string

	// FailedIDs are the messages that could not be archived.
	FailedIDs []string

	// Success is true when every pending message was archived.
	Success bool
}

// NewCoordinator creates a Coordinator using the given cache store and
// transport.
func NewCoordinator(store *cache.Store, transport Transport, cfg Config) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Coordinator{
		store:         store,
		transport:     transport,
		workers:       cfg.Workers,
		maxTries:      defaultMaxTries,
		retryInterval: cfg.RetryInterval,
		account:       cfg.Account,
		logger:        logging.WithOperation(cfg.Logger, "archive.cluster"),
		metrics:       cfg.Metrics,
	}
}

// ArchiveCluster archives every not-yet-archived message of the cluster.
// Messages archived by a previous, partially failed call are skipped, so the
// operation can be resumed until it reports Success.
//
// The cache is only updated for messages whose remote mutation succeeded;
// a failed message stays visible in the inbox and in the cluster listing.
func (c *Coordinator) ArchiveCluster(ctx context.Context, clusterID int64) (*Result, error) {
	ctx, span := instrumentation.StartSpan(ctx, "archive.cluster",
		instrumentation.ClusterAttr(clusterID),
	)
	defer span.End()

	audit := instrumentation.NewArchiveAudit(c.account, clusterID)
	audit.WithTracing(instrumentation.GetTraceID(ctx), instrumentation.GetSpanID(ctx))

	members, err := c.store.ClusterMembers(ctx, clusterID)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}
	if len(members) == 0 {
		err := fmt.Errorf("cluster %d: %w", clusterID, ErrNoMessages)
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	var pending []cache.Message
	for _, m := range members {
		if !m.Archived {
			pending = append(pending, m)
		}
	}
	audit.Requested = len(pending)

	if len(pending) == 0 {
		c.logger.Info("cluster already archived", logging.Cluster(clusterID))
		return &Result{Success: true}, nil
	}

	span.SetAttributes(instrumentation.MessagesAttr(len(pending)))

	archived, failed := c.archiveAll(ctx, pending)

	sort.Strings(archived)
	sort.Strings(failed)

	if len(archived) > 0 {
		if err := c.store.MarkArchived(ctx, archived); err != nil {
			instrumentation.SetSpanError(span, err)
			audit.Complete(0, len(pending), err)
			c.logAudit(audit)
			return nil, fmt.Errorf("failed to record archived messages: %w", err)
		}
	}

	result := &Result{
		ArchivedIDs: archived,
		FailedIDs:   failed,
		Success:     len(failed) == 0,
	}

	var resultErr error
	if !result.Success {
		resultErr = fmt.Errorf("%d of %d messages failed", len(failed), len(pending))
	}
	audit.Complete(len(archived), len(failed), resultErr)
	c.logAudit(audit)

	if c.metrics != nil {
		c.metrics.RecordArchiveOperation(ctx, audit.Status(), c.account, len(archived))
	}

	if result.Success {
		instrumentation.SetSpanSuccess(span)
	} else {
		instrumentation.SetSpanError(span, resultErr)
	}

	return result, nil
}

// archiveAll runs label mutations over a bounded worker pool and returns the
// external IDs that succeeded and failed.
func (c *Coordinator) archiveAll(ctx context.Context, pending []cache.Message) (archived, failed []string) {
	workers := c.workers
	if workers > len(pending) {
		workers = len(pending)
	}

	jobs := make(chan cache.Message)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				err := c.archiveOne(ctx, msg.ExternalID)

				mu.Lock()
				if err != nil {
					failed = append(failed, msg.ExternalID)
				} else {
					archived = append(archived, msg.ExternalID)
				}
				mu.Unlock()

				if err != nil {
					c.logger.Warn("failed to archive message",
						logging.Err(err),
						slog.String("message_id", msg.ExternalID),
					)
				}
			}
		}()
	}

	for _, m := range pending {
		jobs <- m
	}
	close(jobs)
	wg.Wait()

	return archived, failed
}

// archiveOne removes the inbox label from a single message, retrying
// transient failures with exponential backoff.
func (c *Coordinator) archiveOne(ctx context.Context, externalID string) error {
	operation := func() (struct{}, error) {
		err := c.transport.ModifyLabels(ctx, externalID, nil, []string{gmail.LabelInbox})
		if err == nil {
			return struct{}{}, nil
		}
		if !gmail.IsTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
	)
	return err
}

func (c *Coordinator) logAudit(audit *instrumentation.ArchiveAudit) {
	c.logger.LogAttrs(context.Background(), slog.LevelInfo, "archive operation completed", audit.LogAttrs()...)
}
