package archive

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/teemow/inboxgroups/internal/cache"
	"github.com/teemow/inboxgroups/internal/gmail"
)

// fakeTransport counts label mutations and fails selected messages.
type fakeTransport struct {
	mu sync.Mutex

	calls map[string]int

	// permanent maps message IDs to a permanent error.
	permanent map[string]error

	// transientUntil maps message IDs to the attempt number from which the
	// mutation starts succeeding.
	transientUntil map[string]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		calls:          make(map[string]int),
		permanent:      make(map[string]error),
		transientUntil: make(map[string]int),
	}
}

func (f *fakeTransport) ModifyLabels(ctx context.Context, externalID string, add, remove []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[externalID]++

	if err, ok := f.permanent[externalID]; ok {
		return err
	}
	if until, ok := f.transientUntil[externalID]; ok && f.calls[externalID] < until {
		return &googleapi.Error{Code: 503, Message: "backend unavailable"}
	}
	return nil
}

func (f *fakeTransport) callCount(externalID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[externalID]
}

func (f *fakeTransport) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// newTestStore creates a store with one cluster holding the given messages.
func newTestStore(t *testing.T, externalIDs []string) (*cache.Store, int64) {
	t.Helper()

	store, err := cache.NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()

	var batch []cache.Message
	for i, id := range externalIDs {
		batch = append(batch, cache.Message{
			ExternalID: id,
			Subject:    "subject " + id,
			Sender:     "sender@example.com",
			Body:       "body",
			ReceivedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		})
	}
	require.NoError(t, store.UpsertMessages(ctx, batch))

	set, err := store.ReplaceClusters(ctx, []cache.NewCluster{
		{Label: "Test", Description: "test cluster", MemberExternalIDs: externalIDs},
	})
	require.NoError(t, err)
	require.Len(t, set.Clusters, 1)

	return store, set.Clusters[0].ID
}

func newTestCoordinator(store *cache.Store, transport Transport) *Coordinator {
	return NewCoordinator(store, transport, Config{
		Workers:       2,
		RetryInterval: time.Millisecond,
	})
}

func TestArchiveClusterSuccess(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1", "m2", "m3"})
	transport := newFakeTransport()
	coord := newTestCoordinator(store, transport)

	result, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"m1", "m2", "m3"}, result.ArchivedIDs)
	assert.Empty(t, result.FailedIDs)

	// Every message was archived in the cache.
	members, err := store.ClusterMembers(context.Background(), clusterID)
	require.NoError(t, err)
	for _, m := range members {
		assert.True(t, m.Archived, "message %s should be archived", m.ExternalID)
	}
}

func TestArchiveClusterIdempotent(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1", "m2"})
	transport := newFakeTransport()
	coord := newTestCoordinator(store, transport)

	result, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)
	require.True(t, result.Success)

	callsAfterFirst := transport.totalCalls()

	// Second call sees only archived messages and touches nothing.
	result, err = coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.ArchivedIDs)
	assert.Equal(t, callsAfterFirst, transport.totalCalls())
}

func TestArchiveClusterPartialFailure(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1", "m2", "m3", "m4", "m5"})
	transport := newFakeTransport()
	transport.permanent["m2"] = &googleapi.Error{Code: 404, Message: "message gone"}
	transport.permanent["m4"] = &googleapi.Error{Code: 403, Message: "forbidden"}
	coord := newTestCoordinator(store, transport)

	result, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, []string{"m1", "m3", "m5"}, result.ArchivedIDs)
	assert.Equal(t, []string{"m2", "m4"}, result.FailedIDs)

	// Permanent failures are not retried.
	assert.Equal(t, 1, transport.callCount("m2"))
	assert.Equal(t, 1, transport.callCount("m4"))

	// Successes survive in the cache even though the operation failed overall.
	members, err := store.ClusterMembers(context.Background(), clusterID)
	require.NoError(t, err)
	archived := make(map[string]bool)
	for _, m := range members {
		archived[m.ExternalID] = m.Archived
	}
	assert.True(t, archived["m1"])
	assert.False(t, archived["m2"])
	assert.True(t, archived["m3"])
	assert.False(t, archived["m4"])
	assert.True(t, archived["m5"])

	// A resumed run only mutates the previously failed messages.
	transport.mu.Lock()
	delete(transport.permanent, "m2")
	delete(transport.permanent, "m4")
	transport.mu.Unlock()

	result, err = coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{"m2", "m4"}, result.ArchivedIDs)
	assert.Equal(t, 1, transport.callCount("m1"))
	assert.Equal(t, 2, transport.callCount("m2"))
}

func TestArchiveClusterRetriesTransient(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1"})
	transport := newFakeTransport()
	transport.transientUntil["m1"] = 3 // fail twice, succeed on the third attempt
	coord := newTestCoordinator(store, transport)

	result, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"m1"}, result.ArchivedIDs)
	assert.Equal(t, 3, transport.callCount("m1"))
}

func TestArchiveClusterExhaustsRetries(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1"})
	transport := newFakeTransport()
	transport.transientUntil["m1"] = 10 // never succeeds within the retry budget
	coord := newTestCoordinator(store, transport)

	result, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, []string{"m1"}, result.FailedIDs)
	assert.Equal(t, 3, transport.callCount("m1"))

	// Nothing was marked archived.
	members, err := store.ClusterMembers(context.Background(), clusterID)
	require.NoError(t, err)
	assert.False(t, members[0].Archived)
}

func TestArchiveClusterUnknownCluster(t *testing.T) {
	store, _ := newTestStore(t, []string{"m1"})
	coord := newTestCoordinator(store, newFakeTransport())

	_, err := coord.ArchiveCluster(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNoMessages)
}

func TestArchiveClusterRemovesInboxLabel(t *testing.T) {
	store, clusterID := newTestStore(t, []string{"m1"})

	var gotAdd, gotRemove []string
	transport := transportFunc(func(ctx context.Context, externalID string, add, remove []string) error {
		gotAdd, gotRemove = add, remove
		return nil
	})
	coord := newTestCoordinator(store, transport)

	_, err := coord.ArchiveCluster(context.Background(), clusterID)
	require.NoError(t, err)

	assert.Empty(t, gotAdd)
	assert.Equal(t, []string{gmail.LabelInbox}, gotRemove)
}

type transportFunc func(ctx context.Context, externalID string, add, remove []string) error

func (f transportFunc) ModifyLabels(ctx context.Context, externalID string, add, remove []string) error {
	return f(ctx, externalID, add, remove)
}
