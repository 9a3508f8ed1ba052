package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMessages() []Message {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []Message{
		{ExternalID: "m1", Subject: "Invoice due", Sender: "billing@shop.example", Body: "pay the invoice", ReceivedAt: base},
		{ExternalID: "m2", Subject: "Invoice reminder", Sender: "billing@shop.example", Body: "invoice overdue", ReceivedAt: base.Add(time.Hour)},
		{ExternalID: "m3", Subject: "Match tonight", Sender: "club@sport.example", Body: "soccer match", ReceivedAt: base.Add(2 * time.Hour)},
	}
}

func TestUpsertMessagesIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertMessages(ctx, testMessages()))
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalMessages)
}

func TestUpsertPreservesArchivedFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	msgs := testMessages()

	require.NoError(t, s.UpsertMessages(ctx, msgs))
	require.NoError(t, s.MarkArchived(ctx, []string{"m1"}))

	// A newer fetch of the same message must not revert the flag.
	require.NoError(t, s.UpsertMessages(ctx, msgs))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ArchivedMessages)
}

func TestUpsertRejectsBatchWithMissingID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := append(testMessages(), Message{Subject: "no id"})
	require.Error(t, s.UpsertMessages(ctx, batch))

	// The whole batch must have been rejected.
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.TotalMessages)
}

func TestReplaceClusters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	set, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Invoices", Description: "billing", MemberExternalIDs: []string{"m1", "m2"}},
		{Label: "Sports", Description: "club", MemberExternalIDs: []string{"m3"}},
	})
	require.NoError(t, err)
	require.Len(t, set.Clusters, 2)
	assert.Equal(t, "Invoices", set.Clusters[0].Label)
	assert.Equal(t, 2, set.Clusters[0].MemberCount)

	// Replacing again supersedes the old set wholesale.
	set, err = s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Everything", Description: "all", MemberExternalIDs: []string{"m1", "m2", "m3"}},
	})
	require.NoError(t, err)
	require.Len(t, set.Clusters, 1)
	assert.Equal(t, 3, set.Clusters[0].MemberCount)
}

func TestListClustersCreatedAtIsNewestRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	_, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Invoices", Description: "billing", MemberExternalIDs: []string{"m1", "m2"}},
		{Label: "Sports", Description: "club", MemberExternalIDs: []string{"m3"}},
	})
	require.NoError(t, err)

	// Skew one row's timestamp into the past; the set must still report
	// the newest one.
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.db.ExecContext(ctx,
		`UPDATE clusters SET created_at = ? WHERE label = 'Invoices'`, old)
	require.NoError(t, err)

	set, err := s.ListClusters(ctx)
	require.NoError(t, err)
	assert.True(t, set.CreatedAt.After(old), "CreatedAt %v should be newer than %v", set.CreatedAt, old)
}

func TestReplaceClustersUnknownMemberRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	_, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Good", MemberExternalIDs: []string{"m1"}},
	})
	require.NoError(t, err)

	_, err = s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Bad", MemberExternalIDs: []string{"m1", "missing"}},
	})
	require.Error(t, err)

	// The previous set must be untouched.
	set, err := s.ListClusters(ctx)
	require.NoError(t, err)
	require.Len(t, set.Clusters, 1)
	assert.Equal(t, "Good", set.Clusters[0].Label)
}

func TestClusterMembersOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	set, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "All", MemberExternalIDs: []string{"m1", "m2", "m3"}},
	})
	require.NoError(t, err)

	members, err := s.ClusterMembers(ctx, set.Clusters[0].ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	// Newest first.
	assert.Equal(t, "m3", members[0].ExternalID)
	assert.Equal(t, "m1", members[2].ExternalID)
}

func TestMarkArchivedMonotonicAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	require.NoError(t, s.MarkArchived(ctx, []string{"m1", "m2"}))
	require.NoError(t, s.MarkArchived(ctx, []string{"m1", "m2"}))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.ArchivedMessages)
	assert.Equal(t, 1, st.ActiveMessages)
}

func TestListClustersFiltersArchived(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertMessages(ctx, testMessages()))

	_, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Invoices", MemberExternalIDs: []string{"m1", "m2"}},
		{Label: "Sports", MemberExternalIDs: []string{"m3"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.MarkArchived(ctx, []string{"m3"}))

	set, err := s.ListClusters(ctx)
	require.NoError(t, err)
	// The fully archived cluster disappears from the listing.
	require.Len(t, set.Clusters, 1)
	assert.Equal(t, "Invoices", set.Clusters[0].Label)

	// But its members remain visible to the coordinator.
	full, err := s.ReplaceClusters(ctx, []NewCluster{
		{Label: "Sports", MemberExternalIDs: []string{"m3"}},
	})
	require.NoError(t, err)
	_ = full
}

func TestMarkArchivedEmptyBatch(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.MarkArchived(context.Background(), nil))
}
