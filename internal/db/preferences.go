package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Preference struct {
	Key       string
	Value     string
	UpdatedAt int64
}

const getPreference = `SELECT key, value, updated_at FROM preferences WHERE key = ?`

// GetPreference returns sql.ErrNoRows when the key was never written.
func (q *Queries) GetPreference(ctx context.Context, key string) (Preference, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var p Preference
	err := row.Scan(&p.Key, &p.Value, &p.UpdatedAt)
	return p, err
}

const setPreference = `INSERT INTO preferences (key, value, updated_at)
VALUES (?, ?, strftime('%s', 'now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

func (q *Queries) SetPreference(ctx context.Context, key, value string) error {
	_, err := q.db.ExecContext(ctx, setPreference, key, value)
	return err
}

const deletePreference = `DELETE FROM preferences WHERE key = ?`

func (q *Queries) DeletePreference(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deletePreference, key)
	return err
}

const listPreferences = `SELECT key, value, updated_at FROM preferences ORDER BY key`

func (q *Queries) ListPreferences(ctx context.Context) ([]Preference, error) {
	rows, err := q.db.QueryContext(ctx, listPreferences)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
