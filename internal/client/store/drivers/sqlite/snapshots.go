package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/coincraftapp/coincraft-go/internal/client/store"
)

type snapshotsRepo struct {
	db *sql.DB
}

func (r *snapshotsRepo) Put(ctx context.Context, name string, data []byte) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, data, saved_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			data       = excluded.data,
			updated_at = excluded.updated_at;
	`, name, data, now, now)
	return err
}

func (r *snapshotsRepo) Get(ctx context.Context, name string) (store.Snapshot, error) {
	snap := store.Snapshot{Name: name}
	err := r.db.QueryRowContext(ctx, `
		SELECT data, saved_at, updated_at
		FROM snapshots WHERE name = ?;
	`, name).Scan(&snap.Data, &snap.SavedAt, &snap.UpdatedAt)
	if err != nil {
		return store.Snapshot{}, mapNotFound(err)
	}
	return snap, nil
}

func (r *snapshotsRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?;`, name)
	return err
}

func (r *snapshotsRepo) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM snapshots;`)
	return err
}
