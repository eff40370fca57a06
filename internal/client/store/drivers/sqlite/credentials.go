package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/coincraftapp/coincraft-go/internal/client/store"
)

type childCredentialsRepo struct {
	db *sql.DB
}

func (r *childCredentialsRepo) Put(ctx context.Context, cred store.ChildCredential) error {
	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO child_credentials (child_id, child_name, sealed, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (child_id) DO UPDATE SET
			child_name = excluded.child_name,
			sealed     = excluded.sealed;
	`, cred.ChildID, cred.ChildName, cred.Sealed, createdAt)
	return err
}

func (r *childCredentialsRepo) Get(ctx context.Context, childID string) (store.ChildCredential, error) {
	cred := store.ChildCredential{ChildID: childID}
	err := r.db.QueryRowContext(ctx, `
		SELECT child_name, sealed, created_at
		FROM child_credentials WHERE child_id = ?;
	`, childID).Scan(&cred.ChildName, &cred.Sealed, &cred.CreatedAt)
	if err != nil {
		return store.ChildCredential{}, mapNotFound(err)
	}
	return cred, nil
}

func (r *childCredentialsRepo) List(ctx context.Context) ([]store.ChildCredential, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT child_id, child_name, sealed, created_at
		FROM child_credentials ORDER BY created_at DESC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []store.ChildCredential
	for rows.Next() {
		var cred store.ChildCredential
		if err := rows.Scan(&cred.ChildID, &cred.ChildName, &cred.Sealed, &cred.CreatedAt); err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (r *childCredentialsRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM child_credentials;`)
	return err
}
