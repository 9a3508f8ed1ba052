package groups

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/teemow/inboxgroups/internal/archive"
	"github.com/teemow/inboxgroups/internal/cache"
	"github.com/teemow/inboxgroups/internal/cluster"
	"github.com/teemow/inboxgroups/internal/gmail"
	"github.com/teemow/inboxgroups/internal/instrumentation"
	"github.com/teemow/inboxgroups/internal/logging"
	"github.com/teemow/inboxgroups/internal/textnorm"
	"github.com/teemow/inboxgroups/internal/vectorize"
)

const (
	// MaxMessages is the upper bound on inbox messages per clustering run.
	MaxMessages = 200

	// DefaultClusters is the cluster count used when none is requested.
	DefaultClusters = 3

	// Weighting factors for building clustering documents. The subject
	// carries most of the topical signal, the sender domain groups
	// newsletters and notifications from the same origin.
	subjectWeight = 3
	domainWeight  = 2
)

// MailTransport is the remote mailbox surface the service depends on.
// *gmail.Client implements it.
type MailTransport interface {
	ListRecentMessages(ctx context.Context, limit int64) ([]gmail.MessageData, error)
	ModifyLabels(ctx context.Context, externalID string, add, remove []string) error
}

// Config holds configuration for a Service.
type Config struct {
	// Account is the mail account the service operates on.
	Account string

	// MaxMessages overrides the per-run message limit (default: 200).
	MaxMessages int64

	// Workers is the concurrency for archive operations.
	Workers int

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics records pipeline metrics. May be nil.
	Metrics *instrumentation.Metrics
}

// Service runs the clustering workflow for one mail account.
type Service struct {
	store     *cache.Store
	transport MailTransport
	archiver  *archive.Coordinator

	account     string
	maxMessages int64
	normalizer  *textnorm.Normalizer
	labeler     *cluster.Labeler
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
}

// NewService creates a Service backed by the given cache store and mail
// transport.
func NewService(store *cache.Store, transport MailTransport, cfg Config) *Service {
	if cfg.MaxMessages <= 0 || cfg.MaxMessages > MaxMessages {
		cfg.MaxMessages = MaxMessages
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	archiver := archive.NewCoordinator(store, transport, archive.Config{
		Workers: cfg.Workers,
		Account: cfg.Account,
		Logger:  cfg.Logger,
		Metrics: cfg.Metrics,
	})

	return &Service{
		store:       store,
		transport:   transport,
		archiver:    archiver,
		account:     cfg.Account,
		maxMessages: cfg.MaxMessages,
		normalizer:  textnorm.New(),
		labeler:     cluster.NewLabeler(),
		logger:      logging.WithAccount(cfg.Logger, cfg.Account),
		metrics:     cfg.Metrics,
	}
}

// accountLocks serializes mutating operations per account.
var accountLocks sync.Map

func lockAccount(account string) func() {
	v, _ := accountLocks.LoadOrStore(account, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// FetchAndCluster fetches recent inbox messages, groups them into k topic
// clusters, and replaces the stored cluster set with the result. Clusters
// are ordered largest first. A k below 1 falls back to DefaultClusters; the
// effective cluster count shrinks when the corpus cannot support k clusters.
func (s *Service) FetchAndCluster(ctx context.Context, k int) (*cache.ClusterSet, error) {
	unlock := lockAccount(s.account)
	defer unlock()

	if k <= 0 {
		k = DefaultClusters
	}

	start := time.Now()
	ctx, span := instrumentation.StartSpan(ctx, "groups.cluster",
		instrumentation.AccountAttr(s.account),
	)
	defer span.End()

	logger := logging.WithOperation(s.logger, "groups.cluster")

	messages, err := s.transport.ListRecentMessages(ctx, s.maxMessages)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		s.recordRun(ctx, instrumentation.StatusError, 0, start)
		return nil, err
	}
	if len(messages) == 0 {
		err := NewValidationError("no messages found in inbox")
		instrumentation.SetSpanError(span, err)
		s.recordRun(ctx, instrumentation.StatusError, 0, start)
		return nil, err
	}

	span.SetAttributes(instrumentation.MessagesAttr(len(messages)))

	batch := make([]cache.Message, len(messages))
	for i, m := range messages {
		batch[i] = cache.Message{
			ExternalID: m.ExternalID,
			Subject:    m.Subject,
			Sender:     m.Sender,
			Body:       m.Body,
			ReceivedAt: m.ReceivedAt,
		}
	}
	if err := s.store.UpsertMessages(ctx, batch); err != nil {
		instrumentation.SetSpanError(span, err)
		s.recordRun(ctx, instrumentation.StatusError, len(messages), start)
		return nil, err
	}

	corpus := make([]string, len(messages))
	for i, m := range messages {
		corpus[i] = s.buildDocument(m)
	}

	vectors, vocab := vectorize.New(vectorize.DefaultConfig()).FitTransform(corpus)

	cfg := cluster.DefaultConfig()
	cfg.K = k
	res := cluster.Run(vectors, cfg)

	newClusters := s.describeClusters(res, vocab, messages)

	set, err := s.store.ReplaceClusters(ctx, newClusters)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		s.recordRun(ctx, instrumentation.StatusError, len(messages), start)
		return nil, err
	}

	logger.Info("clustering completed",
		logging.Messages(len(messages)),
		slog.Int("clusters", len(set.Clusters)),
		slog.Duration("duration", time.Since(start)),
	)
	s.recordRun(ctx, instrumentation.StatusSuccess, len(messages), start)
	instrumentation.SetSpanSuccess(span)

	return set, nil
}

// buildDocument assembles the normalized clustering document for a message.
// Subject terms are repeated to weight them over body terms.
func (s *Service) buildDocument(m gmail.MessageData) string {
	var b strings.Builder
	for i := 0; i < subjectWeight; i++ {
		b.WriteString(m.Subject)
		b.WriteString(" ")
	}
	domain := textnorm.SenderDomain(m.Sender)
	for i := 0; i < domainWeight; i++ {
		b.WriteString(domain)
		b.WriteString(" ")
	}
	b.WriteString(m.Body)
	return s.normalizer.Normalize(b.String())
}

// describeClusters orders clusters largest first and derives a label and
// description for each from its centroid and member senders.
func (s *Service) describeClusters(res *cluster.Result, vocab []string, messages []gmail.MessageData) []cache.NewCluster {
	members := make([][]int, res.K)
	for i, c := range res.Assignments {
		members[c] = append(members[c], i)
	}

	order := make([]int, res.K)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(members[order[a]]) > len(members[order[b]])
	})

	var out []cache.NewCluster
	for display, c := range order {
		idx := members[c]
		if len(idx) == 0 {
			continue
		}

		senders := make([]string, len(idx))
		ids := make([]string, len(idx))
		for i, mi := range idx {
			senders[i] = messages[mi].Sender
			ids[i] = messages[mi].ExternalID
		}

		label, description := s.labeler.Label(res.Centroids[c], vocab, display, senders)
		out = append(out, cache.NewCluster{
			Label:             label,
			Description:       description,
			MemberExternalIDs: ids,
		})
	}
	return out
}

// ListClusters returns the stored cluster set with archived messages
// filtered out.
func (s *Service) ListClusters(ctx context.Context) (*cache.ClusterSet, error) {
	return s.store.ListClusters(ctx)
}

// ArchiveCluster archives every message of the given cluster. See
// archive.Coordinator.ArchiveCluster for partial failure semantics.
func (s *Service) ArchiveCluster(ctx context.Context, clusterID int64) (*archive.Result, error) {
	unlock := lockAccount(s.account)
	defer unlock()

	res, err := s.archiver.ArchiveCluster(ctx, clusterID)
	if errors.Is(err, archive.ErrNoMessages) {
		return nil, NewValidationError("unknown cluster id %d", clusterID)
	}
	return res, err
}

// Stats returns message and cluster counts from the local cache.
func (s *Service) Stats(ctx context.Context) (*cache.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) recordRun(ctx context.Context, status string, messages int, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordClusteringRun(ctx, status, messages, time.Since(start))
}
