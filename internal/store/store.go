package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Credential is a persisted account credential. Sealed holds the
// encrypted token payload; the store never sees plaintext tokens.
type Credential struct {
	Email     string
	UserID    int64
	Sealed    []byte
	UpdatedAt time.Time
}

// Device is the persisted identity of this client installation.
type Device struct {
	Name      string
	UUID      string
	CreatedAt time.Time
}

// CredentialStore handles credential persistence.
type CredentialStore interface {
	// SaveCredential inserts or replaces the credential for cred.Email.
	SaveCredential(ctx context.Context, cred *Credential) error

	// GetCredential retrieves the credential for an account email.
	GetCredential(ctx context.Context, email string) (*Credential, error)

	// DeleteCredential removes the credential for an account email.
	DeleteCredential(ctx context.Context, email string) error
}

// DeviceStore handles device identity persistence.
type DeviceStore interface {
	// GetDevice retrieves the device registered under name.
	GetDevice(ctx context.Context, name string) (*Device, error)

	// SaveDevice registers a device. An existing name keeps its UUID.
	SaveDevice(ctx context.Context, device *Device) error
}

// Store aggregates all storage interfaces.
type Store interface {
	CredentialStore
	DeviceStore
	Close() error
}
