package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/memora/reflections/internal/pkg/persistence"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	res := &DB{pool: pool}
	return res, nil
}

// InsertEntry inserts entry row into DB
func (db *DB) InsertEntry(ctx context.Context, e *persistence.Entry) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO entry(id, user_id, created_at, updated_at,
	file_path, public_url, bucket, original_file_name, file_size, file_duration,
	language, is_private, processing_status)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::entry_status)`,
		e.ID, e.UserID, e.Created, e.Updated, e.FilePath, e.PublicURL, e.Bucket,
		e.OriginalFileName, e.FileSize, e.FileDuration, e.Language, e.IsPrivate, e.Status)
	if err != nil {
		return fmt.Errorf("can't insert entry: %w", err)
	}
	return nil
}

// InsertTranscript inserts entry transcript row into DB
func (db *DB) InsertTranscript(ctx context.Context, t *persistence.EntryTranscript) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO entry_transcript(id, entry_id, created_at,
	updated_at, transcript, language, confidence)
	VALUES($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.EntryID, t.Created, t.Updated, t.Transcript, t.Language, t.Confidence)
	if err != nil {
		return fmt.Errorf("can't insert transcript: %w", err)
	}
	return nil
}

// UpdateEntryStatus moves entry to a new processing status
func (db *DB) UpdateEntryStatus(ctx context.Context, id, status string) error {
	rows, err := db.pool.Exec(ctx, `UPDATE entry SET
	processing_status = $2::entry_status,
	updated_at = $3
	WHERE id = $1`, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("can't update entry status: %w", err)
	}
	if rows.RowsAffected() != 1 {
		return fmt.Errorf("can't update entry status, no records found")
	}
	return nil
}

// LoadEntry loads entry from DB, returns nil if not found
func (db *DB) LoadEntry(ctx context.Context, id string) (*persistence.Entry, error) {
	var res persistence.Entry
	err := db.pool.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at, deleted_at,
	file_path, public_url, original_file_name, language, is_private, processing_status
	FROM entry WHERE id = $1`, id).Scan(&res.ID, &res.UserID, &res.Created, &res.Updated,
		&res.Deleted, &res.FilePath, &res.PublicURL, &res.OriginalFileName, &res.Language,
		&res.IsPrivate, &res.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load entry: %w", err)
	}
	return &res, nil
}

// LoadSession loads auth session by token, returns nil if not found
func (db *DB) LoadSession(ctx context.Context, token string) (*persistence.Session, error) {
	var res persistence.Session
	err := db.pool.QueryRow(ctx, `SELECT token, user_id, expires_at FROM auth.sessions
	WHERE token = $1`, token).Scan(&res.Token, &res.UserID, &res.Expires)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("can't load session: %w", err)
	}
	return &res, nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'entry')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}
