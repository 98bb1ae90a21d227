package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

// EventSource yields session events. *session.Session implements it.
type EventSource interface {
	NextEvent(ctx context.Context) (loco.Event, error)
	KnownUser(userID int64) (session.Identity, bool)
}

// KickedOutError reports that the server ended the session.
type KickedOutError struct {
	Reason int
}

func (e *KickedOutError) Error() string {
	return fmt.Sprintf("kicked out by server (reason %d)", e.Reason)
}

// Pump reads events until ctx is cancelled, the transport closes or the
// server kicks the session out. handle, when set, sees every event after
// the identity cache has been updated. Cancellation returns nil.
func Pump(ctx context.Context, src EventSource, logger *zerolog.Logger, handle func(loco.Event)) error {
	for {
		ev, err := src.NextEvent(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return err
		}

		logEvent(logger, src, ev)
		if handle != nil {
			handle(ev)
		}

		if k, ok := ev.(*loco.KickoutEvent); ok {
			return &KickedOutError{Reason: k.Reason}
		}
	}
}

func logEvent(logger *zerolog.Logger, src EventSource, ev loco.Event) {
	switch e := ev.(type) {
	case *loco.ChatEvent:
		nickname := ""
		if ident, ok := src.KnownUser(e.Chat.SenderID); ok {
			nickname = ident.Nickname
		}
		logger.Info().
			Int64("chat_id", e.ChatID).
			Int64("log_id", e.Chat.LogID).
			Int64("sender_id", e.Chat.SenderID).
			Str("sender", nickname).
			Str("message", e.Chat.Message).
			Msg("chat")
	case *loco.ChatReadEvent:
		logger.Debug().Int64("chat_id", e.ChatID).Int64("user_id", e.UserID).Int64("watermark", e.Watermark).Msg("chat read")
	case *loco.ProfileChangedEvent:
		logger.Info().Int64("link_id", e.LinkID).Int64("user_id", e.User.UserID).Str("nickname", e.User.Nickname).Msg("profile changed")
	}
}
