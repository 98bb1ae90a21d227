package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/auth"
	"github.com/vovakirdan/kakaosession/internal/loco"
)

// OpenConfig holds what is needed to bring a session online.
type OpenConfig struct {
	Endpoint   string
	Credential auth.Credential
	Device     auth.Device
	Options    loco.Options
}

// Open dials the gateway, authenticates the connection with the credential and
// takes the channel snapshot.
func Open(ctx context.Context, cfg OpenConfig, logger *zerolog.Logger) (*Session, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	logger.Info().Str("endpoint", cfg.Endpoint).Msg("connecting")

	client, err := loco.Dial(ctx, cfg.Endpoint, cfg.Options, logger)
	if err != nil {
		return nil, err
	}

	res, err := client.LoginList(ctx, loco.LoginListRequest{
		OAuthToken: cfg.Credential.AccessToken,
		DeviceUUID: cfg.Device.UUID,
		OS:         cfg.Device.OS(),
		AppVersion: cfg.Device.AppVersion,
		Language:   cfg.Device.Language,
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("login list: %w", err)
	}

	channels := make(map[int64]loco.ChannelData, len(res.ChatDatas))
	for _, ch := range res.ChatDatas {
		channels[ch.ChatID] = ch
	}

	s := New(client, client.Events(), channels, logger)
	s.userID = res.UserID
	if s.userID == 0 {
		s.userID = cfg.Credential.UserID
	}
	logger.Info().Int64("user_id", s.userID).Int("channels", len(channels)).Msg("session online")
	return s, nil
}
