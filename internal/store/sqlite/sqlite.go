package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/kakaosession/internal/store"
)

// Schema creates the tables used by the store. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
	email      TEXT PRIMARY KEY,
	user_id    INTEGER NOT NULL,
	sealed     BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS devices (
	name       TEXT PRIMARY KEY,
	uuid       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies Schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, ApplySchema)
}

// ApplySchema creates missing tables.
func ApplySchema(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; :memory: requires it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== CredentialStore implementation ====

// SaveCredential inserts or replaces the credential for cred.Email.
func (s *SQLiteStore) SaveCredential(ctx context.Context, cred *store.Credential) error {
	query := `
		INSERT INTO credentials (email, user_id, sealed, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(email) DO UPDATE SET
			user_id = excluded.user_id,
			sealed = excluded.sealed,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, cred.Email, cred.UserID, cred.Sealed); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// GetCredential retrieves the credential for an account email.
func (s *SQLiteStore) GetCredential(ctx context.Context, email string) (*store.Credential, error) {
	query := `
		SELECT email, user_id, sealed, updated_at
		FROM credentials
		WHERE email = ?
	`
	var cred store.Credential
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&cred.Email,
		&cred.UserID,
		&cred.Sealed,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential for %s: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}

	return &cred, nil
}

// DeleteCredential removes the credential for an account email.
func (s *SQLiteStore) DeleteCredential(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE email = ?`, email); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

// ==== DeviceStore implementation ====

// GetDevice retrieves the device registered under name.
func (s *SQLiteStore) GetDevice(ctx context.Context, name string) (*store.Device, error) {
	query := `
		SELECT name, uuid, created_at
		FROM devices
		WHERE name = ?
	`
	var device store.Device
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&device.Name,
		&device.UUID,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("device %s: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query device: %w", err)
	}

	return &device, nil
}

// SaveDevice registers a device. An existing name keeps its UUID.
func (s *SQLiteStore) SaveDevice(ctx context.Context, device *store.Device) error {
	query := `
		INSERT INTO devices (name, uuid)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`
	if _, err := s.db.ExecContext(ctx, query, device.Name, device.UUID); err != nil {
		return fmt.Errorf("save device: %w", err)
	}
	return nil
}

var _ store.Store = (*SQLiteStore)(nil)
