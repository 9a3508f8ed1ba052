package cache

import (
	"fmt"
	"time"
)

// Message is a cached email message. ExternalID is the stable
// provider-assigned id; ID is the local surrogate key.
type Message struct {
	ID         int64
	ExternalID string
	Subject    string
	Sender     string
	Body       string
	ReceivedAt time.Time
	Archived   bool
	// ClusterID is nil until the message has been clustered.
	ClusterID *int64
}

// Cluster is one group of a persisted clustering run. Members are ordered
// by received time, newest first.
type Cluster struct {
	ID          int64
	Label       string
	Description string
	MemberCount int
	Members     []Message
}

// ClusterSet is the full outcome of one clustering run, ordered largest
// cluster first.
type ClusterSet struct {
	Clusters  []*Cluster
	CreatedAt time.Time
}

// NewCluster describes a cluster to be installed by ReplaceClusters.
type NewCluster struct {
	Label             string
	Description       string
	MemberExternalIDs []string
}

// Stats summarizes the cache contents.
type Stats struct {
	TotalMessages    int
	ActiveMessages   int
	ArchivedMessages int
	Clusters         int
}

// ConsistencyError reports an atomic cache write that may have partially
// applied due to an underlying storage fault. It is fatal and requires
// external reconciliation.
type ConsistencyError struct {
	Op  string
	Err error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cache consistency fault during %s: %v", e.Op, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}
