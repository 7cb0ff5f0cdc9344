package mysql

import (
	"context"
	"database/sql"
	"errors"

	"trip_planner/internal/domain"
)

// Repo is a domain.KVStore backed by a single MySQL table.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate creates the table when it does not exist yet.
func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, createKVSQL)
	return err
}

func (r *Repo) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := r.db.QueryRowContext(ctx, getKVSQL, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return v, err
}

func (r *Repo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, upsertKVSQL, key, value)
	return err
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, deleteKVSQL, key)
	return err
}

func (r *Repo) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, listKeysSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *Repo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, clearKVSQL)
	return err
}
