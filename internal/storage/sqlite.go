package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/Veraticus/kitty/internal/session"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage implements service.SessionStorage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	now    func() time.Time
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SaveSession replaces the stored session.
func (s *SQLiteStorage) SaveSession(ctx context.Context, sess *service.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSession(sess); err != nil {
		return err
	}

	savedAt := sess.SavedAt
	if savedAt.IsZero() {
		savedAt = s.now()
	}

	var expiresAt sql.NullTime
	if sess.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: sess.ExpiresAt.UTC(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, subject, expires_at, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			subject = excluded.subject,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at
	`, sess.Token, sess.Subject, expiresAt, savedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession returns the stored session or common.ErrNotFound.
func (s *SQLiteStorage) GetSession(ctx context.Context) (*service.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		sess      service.Session
		expiresAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT token, subject, expires_at, saved_at
		FROM sessions
		WHERE id = 1
	`).Scan(&sess.Token, &sess.Subject, &expiresAt, &sess.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no saved session", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		sess.ExpiresAt = &t
	}
	return &sess, nil
}

// ClearSession removes the stored session. Clearing an empty store is not an
// error.
func (s *SQLiteStorage) ClearSession(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Token implements service.TokenStore.
func (s *SQLiteStorage) Token(ctx context.Context) (string, error) {
	sess, err := s.GetSession(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return "", fmt.Errorf("%w: not signed in, run 'kitty session set'", common.ErrMissingConfig)
	}
	if err != nil {
		return "", err
	}
	if err := session.Check(sess, s.now()); err != nil {
		return "", err
	}
	return sess.Token, nil
}
