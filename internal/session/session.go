package session

import (
	"context"
	"maps"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

// Conn is the request side of the connection layer. *loco.Client implements it.
// Implementations must be safe for concurrent use.
type Conn interface {
	JoinInfo(ctx context.Context, req loco.JoinInfoRequest) (*loco.JoinInfoResponse, error)
	CheckJoin(ctx context.Context, req loco.CheckJoinRequest) (*loco.CheckJoinResponse, error)
	JoinLink(ctx context.Context, req loco.JoinLinkRequest) (*loco.JoinLinkResponse, error)
	Write(ctx context.Context, req loco.WriteRequest) (*loco.WriteResponse, error)
	DeleteMsg(ctx context.Context, req loco.DeleteMsgRequest) error
	HideMsg(ctx context.Context, req loco.HideMsgRequest) error
	KickMember(ctx context.Context, req loco.KickMemberRequest) error
	ChatLogs(ctx context.Context, req loco.ChatLogsRequest) (*loco.ChatLogsResponse, error)
	Close() error
}

// Session owns the live connection, the event stream and the identity cache.
type Session struct {
	conn     Conn
	events   <-chan loco.Event
	channels map[int64]loco.ChannelData
	users    *IdentityCache
	userID   int64
	log      *zerolog.Logger

	closed atomic.Bool
}

// New assembles a session from an established connection.
// channels is the snapshot taken at login and is copied.
func New(conn Conn, events <-chan loco.Event, channels map[int64]loco.ChannelData, logger *zerolog.Logger) *Session {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Session{
		conn:     conn,
		events:   events,
		channels: maps.Clone(channels),
		users:    NewIdentityCache(),
		log:      logger,
	}
}

// NextEvent waits for the next inbound event, applies its identity update and
// returns it unchanged. Unhandled and error events are returned like any other.
// Once the transport is closed every call returns ErrTransportClosed.
func (s *Session) NextEvent(ctx context.Context) (loco.Event, error) {
	if s.closed.Load() {
		return nil, ErrTransportClosed
	}

	var (
		ev loco.Event
		ok bool
	)
	select {
	case ev, ok = <-s.events:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if !ok {
		s.closed.Store(true)
		return nil, ErrTransportClosed
	}

	s.dispatch(ev)
	return ev, nil
}

func (s *Session) dispatch(ev loco.Event) {
	switch e := ev.(type) {
	case *loco.ChatEvent:
		s.log.Debug().Int64("chat_id", e.ChatID).Int64("log_id", e.Chat.LogID).Int64("sender_id", e.Chat.SenderID).Msg("chat received")
	case *loco.UnhandledEvent:
		s.log.Warn().Str("method", e.Method).RawJSON("data", nonEmptyJSON(e.Data)).Msg("unhandled event")
	case *loco.ErrorEvent:
		s.log.Error().Err(e.Err).Str("method", e.Method).Msg("error event")
	case *loco.KickoutEvent:
		s.log.Warn().Int("reason", e.Reason).Msg("kicked out by server")
	}

	if s.users.applyEvent(ev) {
		s.log.Debug().Msg("identity cache updated")
	}
}

// Channels returns the channel snapshot taken at login.
func (s *Session) Channels() map[int64]loco.ChannelData {
	return maps.Clone(s.channels)
}

// Channel returns one channel of the login snapshot.
func (s *Session) Channel(chatID int64) (loco.ChannelData, bool) {
	ch, ok := s.channels[chatID]
	return ch, ok
}

// KnownUser returns the cached identity of a user.
func (s *Session) KnownUser(userID int64) (Identity, bool) {
	return s.users.Lookup(userID)
}

// UserID returns the account id of the logged in user, zero if unknown.
func (s *Session) UserID() int64 {
	return s.userID
}

// Close closes the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}

func nonEmptyJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("null")
	}
	return raw
}
