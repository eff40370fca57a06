package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/coincraftapp/coincraft-go/internal/client/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database file is still usable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Identity() store.Identity                 { return &identityRepo{db: s.db} }
func (s *Store) Snapshots() store.Snapshots               { return &snapshotsRepo{db: s.db} }
func (s *Store) ChildCredentials() store.ChildCredentials { return &childCredentialsRepo{db: s.db} }

// Clear wipes every table. One transaction so a partial wipe cannot leave a
// token without its user or vice versa.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range []string{
		`DELETE FROM identity;`,
		`DELETE FROM snapshots;`,
		`DELETE FROM child_credentials;`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
