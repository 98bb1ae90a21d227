package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/kakaosession/internal/store"
)

var (
	// ErrNoCredential is returned when no credential is stored for an account.
	ErrNoCredential = errors.New("no stored credential")
	// ErrInvalidEmail is returned when the account email is empty or malformed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidPassword is returned when the password is empty.
	ErrInvalidPassword = errors.New("invalid password")
)

// ResolveDevice fills in the device UUID. An explicit UUID wins, then the
// one registered under the device name, otherwise a new one is generated
// and registered.
func ResolveDevice(ctx context.Context, devices store.DeviceStore, base Device) (Device, error) {
	if base.UUID != "" {
		return base, nil
	}

	stored, err := devices.GetDevice(ctx, base.Name)
	if err == nil {
		base.UUID = stored.UUID
		return base, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return base, fmt.Errorf("get device: %w", err)
	}

	base.UUID = NewDeviceUUID()
	if err := devices.SaveDevice(ctx, &store.Device{Name: base.Name, UUID: base.UUID}); err != nil {
		return base, fmt.Errorf("save device: %w", err)
	}
	return base, nil
}

// Service logs in accounts and keeps their credentials sealed at rest.
type Service struct {
	store  store.CredentialStore
	authn  Authenticator
	sealer *Sealer
	log    *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(credentials store.CredentialStore, authn Authenticator, sealer *Sealer, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		store:  credentials,
		authn:  authn,
		sealer: sealer,
		log:    logger,
	}
}

// Login authenticates against the account API and stores the result.
func (s *Service) Login(ctx context.Context, email, password string, forced bool) (*Credential, error) {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrInvalidPassword
	}

	cred, err := s.authn.Login(ctx, email, password, forced)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	payload, err := json.Marshal(cred)
	if err != nil {
		return nil, fmt.Errorf("marshal credential: %w", err)
	}
	sealed, err := s.sealer.Seal(payload)
	if err != nil {
		return nil, fmt.Errorf("seal credential: %w", err)
	}
	if err := s.store.SaveCredential(ctx, &store.Credential{Email: email, UserID: cred.UserID, Sealed: sealed}); err != nil {
		return nil, fmt.Errorf("store credential: %w", err)
	}

	s.log.Info().Int64("user_id", cred.UserID).Msg("logged in")
	return cred, nil
}

// StoredCredential returns the last credential stored for email.
func (s *Service) StoredCredential(ctx context.Context, email string) (*Credential, error) {
	rec, err := s.store.GetCredential(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	payload, err := s.sealer.Open(rec.Sealed)
	if err != nil {
		return nil, fmt.Errorf("open credential: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Credential returns the stored credential for email, logging in when
// none is stored or reuse is false.
func (s *Service) Credential(ctx context.Context, email, password string, reuse bool) (*Credential, error) {
	if reuse {
		cred, err := s.StoredCredential(ctx, email)
		if err == nil {
			s.log.Debug().Int64("user_id", cred.UserID).Msg("reusing stored credential")
			return cred, nil
		}
		if !errors.Is(err, ErrNoCredential) {
			s.log.Warn().Err(err).Msg("stored credential unusable, logging in")
		}
	}
	return s.Login(ctx, email, password, true)
}

// Forget removes the stored credential for email.
func (s *Service) Forget(ctx context.Context, email string) error {
	return s.store.DeleteCredential(ctx, strings.TrimSpace(email))
}
