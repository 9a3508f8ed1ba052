package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS clusters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	label TEXT NOT NULL,
	description TEXT NOT NULL,
	email_count INTEGER NOT NULL,
	position INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	gmail_id TEXT NOT NULL UNIQUE,
	subject TEXT NOT NULL,
	sender TEXT NOT NULL,
	body TEXT NOT NULL,
	received_at DATETIME,
	archived BOOLEAN NOT NULL DEFAULT 0,
	cluster_id INTEGER REFERENCES clusters(id) ON DELETE SET NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_emails_gmail_id ON emails(gmail_id);
CREATE INDEX IF NOT EXISTS idx_emails_archived ON emails(archived);
CREATE INDEX IF NOT EXISTS idx_emails_cluster ON emails(cluster_id);
`

// Store is the SQLite-backed email cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the cache database at the given data
// directory. An empty dataDir defaults to ~/.cache/inboxgroups.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cache", "inboxgroups")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "emails.db")

	// WAL mode for better concurrency between the pipeline and archive
	// paths; busy_timeout to ride out short lock contention.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// UpsertMessages inserts or updates the batch keyed by external id. The
// whole batch is applied in one transaction; the archived flag of existing
// rows is never touched, so a re-fetch cannot revert an archive.
func (s *Store) UpsertMessages(ctx context.Context, batch []Message) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO emails (gmail_id, subject, sender, body, received_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(gmail_id) DO UPDATE SET
			subject = excluded.subject,
			sender = excluded.sender,
			body = excluded.body,
			received_at = excluded.received_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, m := range batch {
		if m.ExternalID == "" {
			return fmt.Errorf("message without external id in upsert batch")
		}
		if _, err := stmt.ExecContext(ctx, m.ExternalID, m.Subject, m.Sender, m.Body, m.ReceivedAt); err != nil {
			return fmt.Errorf("upserting message %s: %w", m.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return &ConsistencyError{Op: "upsert messages", Err: err}
	}
	return nil
}

// ReplaceClusters atomically discards the previous cluster set and installs
// the new one, including each member's cluster id. Messages never point at
// a cluster row that does not exist.
func (s *Store) ReplaceClusters(ctx context.Context, clusters []NewCluster) (*ClusterSet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE emails SET cluster_id = NULL`); err != nil {
		return nil, fmt.Errorf("clearing cluster assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM clusters`); err != nil {
		return nil, fmt.Errorf("deleting previous clusters: %w", err)
	}

	assign, err := tx.PrepareContext(ctx, `UPDATE emails SET cluster_id = ? WHERE gmail_id = ?`)
	if err != nil {
		return nil, fmt.Errorf("preparing assignment update: %w", err)
	}
	defer assign.Close()

	for pos, c := range clusters {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO clusters (label, description, email_count, position) VALUES (?, ?, ?, ?)`,
			c.Label, c.Description, len(c.MemberExternalIDs), pos)
		if err != nil {
			return nil, fmt.Errorf("inserting cluster %q: %w", c.Label, err)
		}
		clusterID, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading cluster id: %w", err)
		}
		for _, extID := range c.MemberExternalIDs {
			n, err := assign.ExecContext(ctx, clusterID, extID)
			if err != nil {
				return nil, fmt.Errorf("assigning message %s: %w", extID, err)
			}
			if affected, err := n.RowsAffected(); err == nil && affected == 0 {
				return nil, fmt.Errorf("cluster member %s not present in cache", extID)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &ConsistencyError{Op: "replace clusters", Err: err}
	}
	return s.ListClusters(ctx)
}

// ListClusters returns the most recently persisted cluster set. Archived
// members are filtered out; clusters left with no active members are
// omitted and counts reflect active members only.
func (s *Store) ListClusters(ctx context.Context) (*ClusterSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, description, created_at FROM clusters ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("querying clusters: %w", err)
	}
	defer rows.Close()

	set := &ClusterSet{}
	for rows.Next() {
		c := &Cluster{}
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Label, &c.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning cluster: %w", err)
		}
		if createdAt.After(set.CreatedAt) {
			set.CreatedAt = createdAt
		}
		set.Clusters = append(set.Clusters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clusters: %w", err)
	}

	active := set.Clusters[:0]
	for _, c := range set.Clusters {
		members, err := s.clusterMembers(ctx, c.ID, false)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}
		c.Members = members
		c.MemberCount = len(members)
		active = append(active, c)
	}
	set.Clusters = active
	return set, nil
}

// ClusterMembers returns all members of the cluster, archived included.
// The archive coordinator relies on seeing archived members so it can skip
// them.
func (s *Store) ClusterMembers(ctx context.Context, clusterID int64) ([]Message, error) {
	return s.clusterMembers(ctx, clusterID, true)
}

func (s *Store) clusterMembers(ctx context.Context, clusterID int64, includeArchived bool) ([]Message, error) {
	q := `SELECT id, gmail_id, subject, sender, body, received_at, archived, cluster_id
		FROM emails WHERE cluster_id = ?`
	if !includeArchived {
		q += ` AND archived = 0`
	}
	q += ` ORDER BY received_at DESC, id`

	rows, err := s.db.QueryContext(ctx, q, clusterID)
	if err != nil {
		return nil, fmt.Errorf("querying cluster members: %w", err)
	}
	defer rows.Close()

	var members []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cluster members: %w", err)
	}
	return members, nil
}

// MarkArchived sets the archived flag for the given external ids in one
// atomic write. The flag is monotonic: this is the only write path and it
// only ever sets true, so already-archived ids are a no-op.
func (s *Store) MarkArchived(ctx context.Context, externalIDs []string) error {
	if len(externalIDs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.Repeat("?,", len(externalIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(externalIDs))
	for i, id := range externalIDs {
		args[i] = id
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE emails SET archived = 1 WHERE gmail_id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("marking messages archived: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return &ConsistencyError{Op: "mark archived", Err: err}
	}
	return nil
}

// Stats returns message and cluster totals.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{}
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN archived = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN archived = 1 THEN 1 ELSE 0 END), 0)
		FROM emails`)
	if err := row.Scan(&st.TotalMessages, &st.ActiveMessages, &st.ArchivedMessages); err != nil {
		return nil, fmt.Errorf("scanning message stats: %w", err)
	}
	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clusters`)
	if err := row.Scan(&st.Clusters); err != nil {
		return nil, fmt.Errorf("scanning cluster stats: %w", err)
	}
	return st, nil
}

// scanMessage reads one email row.
func scanMessage(rows *sql.Rows) (Message, error) {
	var m Message
	var received sql.NullTime
	var clusterID sql.NullInt64
	if err := rows.Scan(&m.ID, &m.ExternalID, &m.Subject, &m.Sender, &m.Body,
		&received, &m.Archived, &clusterID); err != nil {
		return Message{}, fmt.Errorf("scanning message: %w", err)
	}
	if received.Valid {
		m.ReceivedAt = received.Time
	}
	if clusterID.Valid {
		id := clusterID.Int64
		m.ClusterID = &id
	}
	return m, nil
}
