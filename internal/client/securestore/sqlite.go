package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/policylogs/internal/client/migrations"
	"github.com/dmitrijs2005/policylogs/internal/common"
	"github.com/dmitrijs2005/policylogs/internal/cryptox"
	"github.com/dmitrijs2005/policylogs/internal/dbx"
	"github.com/dmitrijs2005/policylogs/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

const saltKey = "kdf_salt"

// SQLiteStore keeps AES-GCM sealed values in a local SQLite file.
// The sealing key is derived from the configured secret and a random salt
// created with the database.
type SQLiteStore struct {
	db  *sql.DB
	key []byte
	now func() time.Time
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the store at path, runs migrations and
// derives the sealing key.
func Open(ctx context.Context, path string, secret []byte) (*SQLiteStore, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrStore, path, err)
	}
	// SQLite allows one writer; a single connection keeps writes ordered.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(ctx, db, secret)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an already opened database.
func NewSQLiteStore(ctx context.Context, db *sql.DB, secret []byte) (*SQLiteStore, error) {
	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	salt, err := loadOrCreateSalt(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %w", ErrStore, err)
	}

	return &SQLiteStore{
		db:  db,
		key: cryptox.DeriveKey(secret, salt),
		now: time.Now,
	}, nil
}

// loadOrCreateSalt returns the per-database KDF salt, creating it on the
// first open.
func loadOrCreateSalt(ctx context.Context, db *sql.DB) ([]byte, error) {
	var salt []byte
	err := dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		salt, _, err = dbx.LoadOrInsert(ctx, tx, "store_meta", saltKey, func() []byte {
			return common.GenerateRandByteArray(cryptox.SaltSize)
		})
		return err
	})
	return salt, err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get opens the sealed value under key. A value that fails to open, e.g.
// because the secret changed, is an ErrStore error.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var ciphertext, nonce []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT ciphertext, nonce FROM secure_items WHERE key = ?`, key).Scan(&ciphertext, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrStore, key, err)
	}

	plaintext, err := cryptox.Open(ciphertext, nonce, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrStore, key, err)
	}
	return plaintext, nil
}

// Set seals value with a fresh nonce and upserts it.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	ciphertext, nonce, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("%w: seal %s: %w", ErrStore, key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO secure_items (key, ciphertext, nonce, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			ciphertext = excluded.ciphertext,
			nonce = excluded.nonce,
			updated_at = excluded.updated_at
	`, key, ciphertext, nonce, s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrStore, key, err)
	}
	return nil
}

// Delete removes key. Missing keys are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secure_items WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", ErrStore, key, err)
	}
	return nil
}
