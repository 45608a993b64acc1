// Package sqlite provides the durable session record behind the token
// lifecycle manager.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // driver registration

	"github.com/ewilliams-labs/crescendo/internal/core/domain"
	"github.com/ewilliams-labs/crescendo/internal/core/ports"
)

// SessionStore implements the session persistence port on a single-row
// SQLite table.
type SessionStore struct {
	db *sql.DB
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore opens the database and runs the schema migration.
func NewSessionStore(storagePath string) (*SessionStore, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("session store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("session store: ping: %w", err)
	}

	store := &SessionStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("session store: migrate: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token_type TEXT NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT,
			expiry_time INTEGER NOT NULL,
			country_code TEXT
		)
	`)
	return err
}

// Load reads the stored session, returning ports.ErrNoSession when none
// exists.
func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token_type, access_token, refresh_token, expiry_time, country_code
		FROM session WHERE id = 1
	`)

	var sess domain.Session
	var refresh, country sql.NullString
	if err := row.Scan(&sess.TokenType, &sess.AccessToken, &refresh, &sess.ExpiryTime, &country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, ports.ErrNoSession
		}
		return domain.Session{}, fmt.Errorf("session store: load: %w", err)
	}
	if refresh.Valid {
		sess.RefreshToken = refresh.String
	}
	if country.Valid {
		sess.CountryCode = country.String
	}
	return sess, nil
}

// Save overwrites the single session row atomically.
func (s *SessionStore) Save(ctx context.Context, sess domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session (id, token_type, access_token, refresh_token, expiry_time, country_code)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token_type = excluded.token_type,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expiry_time = excluded.expiry_time,
			country_code = excluded.country_code
	`, sess.TokenType, sess.AccessToken, nullable(sess.RefreshToken), sess.ExpiryTime, nullable(sess.CountryCode))
	if err != nil {
		return fmt.Errorf("session store: save: %w", err)
	}
	return nil
}

// Clear removes the session record entirely.
func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("session store: clear: %w", err)
	}
	return nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
