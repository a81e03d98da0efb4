package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// StateRepo is a durable persist.Backend over the persisted_state table.
type StateRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewStateRepo(db *sqlx.DB) *StateRepo { return &StateRepo{db: db, now: time.Now} }

// WithClock returns a copy of r reading time from now.
func (r *StateRepo) WithClock(now func() time.Time) *StateRepo {
	cp := *r
	cp.now = now
	return &cp
}

type stateRow struct {
	Value     string `db:"value"`
	ExpiresAt string `db:"expires_at"`
}

func (r *StateRepo) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row stateRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
	  SELECT value, COALESCE(expires_at,'') AS expires_at
	  FROM persisted_state
	  WHERE state_key = ?
	`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if row.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, row.ExpiresAt)
		if err == nil && !r.now().Before(exp) {
			return nil, false, nil
		}
	}
	return []byte(row.Value), true, nil
}

// Set upserts value. A ttl of zero stores it without expiry.
func (r *StateRepo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := r.now().UTC()
	var expires any
	if ttl > 0 {
		expires = now.Add(ttl).Format(time.RFC3339)
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO persisted_state(state_key, value, expires_at, updated_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(state_key) DO UPDATE SET
	    value = excluded.value,
	    expires_at = excluded.expires_at,
	    updated_at = excluded.updated_at
	`), key, string(value), expires, now.Format(time.RFC3339))
	return err
}

func (r *StateRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM persisted_state WHERE state_key = ?`), key)
	return err
}

// PurgeExpired removes rows whose expiry has passed and reports how many.
func (r *StateRepo) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  DELETE FROM persisted_state
	  WHERE expires_at IS NOT NULL AND expires_at <= ?
	`), r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
