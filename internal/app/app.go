package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/auth"
	"github.com/vovakirdan/kakaosession/internal/config"
	logpkg "github.com/vovakirdan/kakaosession/internal/log"
	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
	"github.com/vovakirdan/kakaosession/internal/store"
	"github.com/vovakirdan/kakaosession/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/kakaosession/internal/transport/http"
)

// ErrControlDisabled is returned when the control API has no signing secret.
var ErrControlDisabled = errors.New("control api disabled: control_jwt_secret is empty")

// App wires together store, account login, session and control API.
type App struct {
	cfg    *config.Config
	store  store.Store
	auth   *auth.Service
	device auth.Device
	log    *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("store_path", cfg.StorePath).Msg("store initialized")

	device, err := auth.ResolveDevice(ctx, st, auth.Device{
		Name:       cfg.DeviceName,
		UUID:       cfg.DeviceUUID,
		Language:   cfg.Language,
		AppVersion: cfg.AppVersion,
		OSVersion:  cfg.OSVersion,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("resolve device: %w", err)
	}

	if cfg.StoreKey == "" {
		logger.Warn().Msg("store_key is empty, credentials are sealed with an empty passphrase")
	}
	authService := auth.NewService(
		st,
		auth.NewLoginClient(cfg.AuthURL, device),
		auth.NewSealer(cfg.StoreKey),
		logpkg.Component(logger, "auth"),
	)

	return &App{
		cfg:    cfg,
		store:  st,
		auth:   authService,
		device: device,
		log:    logger,
	}, nil
}

// JWTConfig returns the control API token configuration.
func (a *App) JWTConfig() *auth.JWTConfig {
	return &auth.JWTConfig{
		Secret:   []byte(a.cfg.ControlJWTSecret),
		Issuer:   a.cfg.ControlJWTIssuer,
		Audience: a.cfg.ControlJWTAudience,
		TTL:      24 * time.Hour,
	}
}

// Login performs a fresh account login and stores the credential.
func (a *App) Login(ctx context.Context) (*auth.Credential, error) {
	return a.auth.Login(ctx, a.cfg.Email, a.cfg.Password, true)
}

// Logout drops the stored credential so the next Connect logs in again.
func (a *App) Logout(ctx context.Context) error {
	return a.auth.Forget(ctx, a.cfg.Email)
}

// Connect logs in, reusing a stored credential when possible, and opens a
// session. A stored credential the server rejects is replaced by a fresh login.
func (a *App) Connect(ctx context.Context) (*session.Session, error) {
	cred, err := a.auth.Credential(ctx, a.cfg.Email, a.cfg.Password, true)
	if err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}

	s, err := a.open(ctx, cred)
	if err == nil || !loco.IsRequestError(err) {
		return s, err
	}

	a.log.Warn().Err(err).Msg("stored credential rejected, logging in again")
	cred, err = a.auth.Credential(ctx, a.cfg.Email, a.cfg.Password, false)
	if err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}
	return a.open(ctx, cred)
}

func (a *App) open(ctx context.Context, cred *auth.Credential) (*session.Session, error) {
	opts := loco.DefaultOptions()
	opts.EventBuffer = a.cfg.EventBuffer
	opts.HandshakeTimeout = a.cfg.HandshakeTimeout
	opts.WriteTimeout = a.cfg.WriteTimeout

	return session.Open(ctx, session.OpenConfig{
		Endpoint:   a.cfg.Endpoint,
		Credential: *cred,
		Device:     a.device,
		Options:    opts,
	}, logpkg.Component(a.log, "session"))
}

// Run connects, serves the control API and pumps events until ctx is
// cancelled, the transport closes or the server kicks the session out.
func (a *App) Run(ctx context.Context) error {
	s, err := a.Connect(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var server *stdhttp.Server
	serverErr := make(chan error, 1)
	if a.cfg.ControlJWTSecret != "" {
		server = transporthttp.NewServer(s, a.JWTConfig(), a.cfg, logpkg.Component(a.log, "control"))
		go func() {
			a.log.Info().Str("addr", server.Addr).Msg("control api listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				serverErr <- err
			}
		}()
	} else {
		a.log.Info().Err(ErrControlDisabled).Msg("control api not started")
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pumpErr := make(chan error, 1)
	go func() {
		pumpErr <- Pump(pumpCtx, s, a.log, nil)
	}()

	select {
	case err = <-pumpErr:
	case err = <-serverErr:
		cancel()
		<-pumpErr
	}

	if server != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancelShutdown()

		a.log.Info().Msg("shutting down control api")
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			a.log.Warn().Err(shutdownErr).Msg("control api shutdown failed")
		}
	}
	return err
}

// Close closes the store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
		return err
	}
	a.log.Info().Msg("store closed")
	return nil
}
