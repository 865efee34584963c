package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a Postgres-backed session store using a single table:
//
//	CREATE TABLE IF NOT EXISTS sessions (
//	    token      TEXT PRIMARY KEY,
//	    data       JSONB NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
//
// Call [PostgresStore.Migrate] at startup to create the table, or manage the
// schema with your own migration tooling.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a session store on top of the given pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the sessions table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// Get retrieves a session by its token.
func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		data      []byte
		expiresAt time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT data, expires_at FROM sessions WHERE token = $1`, token,
	).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if time.Now().After(expiresAt) {
		_, _ = s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
		return nil, ErrExpired
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	return &Session{
		ID:        rec.ID,
		Token:     rec.Token,
		Values:    rec.Values,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Save persists the session, creating or replacing it.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sessionRecord{
		ID:        sess.ID,
		Token:     sess.Token,
		Values:    sess.Values,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (token, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		sess.Token, data, sess.ExpiresAt)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Delete removes a session by its token.
func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return err
}

// DeleteExpired removes all expired sessions.
// Run it periodically; expired rows are otherwise only removed lazily on Get.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
