package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskflow/pkg/utils"
)

// ErrNoSnapshot is returned by Get when nothing is stored under the key
var ErrNoSnapshot = errors.New("no snapshot stored")

// ErrBlobNotFound is returned when a blob reference is unknown
var ErrBlobNotFound = errors.New("blob not found")

// SnapshotStore is the key-value collaborator holding serialized state
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// SQLStore keeps snapshots in the snapshots table
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore wraps an open database whose schema has been ensured
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Get loads the payload stored under key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		rebind(s.dialect, "SELECT payload FROM snapshots WHERE name = ?"),
		key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return []byte(payload), nil
}

// Set stores value under key, replacing any previous payload
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		rebind(s.dialect, `INSERT INTO snapshots (name, payload, updated) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated = CURRENT_TIMESTAMP`),
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

// BlobMeta describes a stored attachment body
type BlobMeta struct {
	Name string
	Type string
	Size int64
}

// BlobStore keeps attachment bodies out of the task snapshot
type BlobStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewBlobStore wraps an open database whose schema has been ensured
func NewBlobStore(db *sql.DB, dialect Dialect) *BlobStore {
	return &BlobStore{db: db, dialect: dialect}
}

// Put stores data and returns the reference to keep on the attachment
func (b *BlobStore) Put(ctx context.Context, data []byte, meta BlobMeta) (string, error) {
	ref := uuid.NewString()
	_, err := b.db.ExecContext(ctx,
		rebind(b.dialect, "INSERT INTO blobs (ref, name, mime, size, data) VALUES (?, ?, ?, ?, ?)"),
		ref, meta.Name, meta.Type, int64(len(data)), data,
	)
	if err != nil {
		return "", fmt.Errorf("store blob %q: %w", meta.Name, err)
	}
	utils.Log("Stored blob %s (%s, %d bytes)", ref, meta.Name, len(data))
	return ref, nil
}

// Get returns the bytes and metadata behind ref
func (b *BlobStore) Get(ctx context.Context, ref string) ([]byte, BlobMeta, error) {
	var data []byte
	var meta BlobMeta
	err := b.db.QueryRowContext(ctx,
		rebind(b.dialect, "SELECT name, mime, size, data FROM blobs WHERE ref = ?"),
		ref,
	).Scan(&meta.Name, &meta.Type, &meta.Size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, BlobMeta{}, fmt.Errorf("%w: %s", ErrBlobNotFound, ref)
	}
	if err != nil {
		return nil, BlobMeta{}, fmt.Errorf("load blob %s: %w", ref, err)
	}
	return data, meta, nil
}

// Prune deletes every blob whose reference is not in keep and returns how many were removed
func (b *BlobStore) Prune(ctx context.Context, keep map[string]struct{}) (int, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT ref FROM blobs")
	if err != nil {
		return 0, fmt.Errorf("list blobs: %w", err)
	}
	var orphans []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			rows.Close()
			return 0, err
		}
		if _, ok := keep[ref]; !ok {
			orphans = append(orphans, ref)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	for _, ref := range orphans {
		if _, err := b.db.ExecContext(ctx, rebind(b.dialect, "DELETE FROM blobs WHERE ref = ?"), ref); err != nil {
			return 0, fmt.Errorf("delete blob %s: %w", ref, err)
		}
	}

	utils.Log("Pruned %d orphaned blob(s)", len(orphans))
	return len(orphans), nil
}
