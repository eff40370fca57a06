package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/coincraftapp/coincraft-go/internal/client/store"
)

type identityRepo struct {
	db *sql.DB
}

func (r *identityRepo) Save(ctx context.Context, rec store.IdentityRecord) error {
	now := time.Now().UTC()
	savedAt := rec.SavedAt
	if savedAt.IsZero() {
		savedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO identity (id, token, user_id, user_json, saved_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token      = excluded.token,
			user_id    = excluded.user_id,
			user_json  = excluded.user_json,
			updated_at = excluded.updated_at;
	`, rec.Token, rec.UserID, rec.UserJSON, savedAt, now)
	return err
}

func (r *identityRepo) Load(ctx context.Context) (store.IdentityRecord, error) {
	var rec store.IdentityRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT token, user_id, user_json, saved_at, updated_at
		FROM identity WHERE id = 1;
	`).Scan(&rec.Token, &rec.UserID, &rec.UserJSON, &rec.SavedAt, &rec.UpdatedAt)
	if err != nil {
		return store.IdentityRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *identityRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM identity;`)
	return err
}
