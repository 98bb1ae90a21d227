package session

import (
	"context"
	"fmt"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

const (
	joinInfoReferer = "EW"
	joinLinkReferer = "EW:"
)

// JoinParams describes a join through an invitation link.
type JoinParams struct {
	LinkURL     string
	Nickname    string
	ProfilePath *string
	Passcode    *string
}

type joinStep int

const (
	stepJoinInfo joinStep = iota
	stepCheckJoin
	stepJoinLink
	stepDone
)

func (s joinStep) String() string {
	switch s {
	case stepJoinInfo:
		return "join info"
	case stepCheckJoin:
		return "check join"
	case stepJoinLink:
		return "join link"
	case stepDone:
		return "done"
	default:
		return "unknown"
	}
}

// joinState is the context carried between handshake steps.
type joinState struct {
	params JoinParams
	step   joinStep
	link   *loco.OpenLink
	token  *string
	result *loco.JoinLinkResponse
}

// JoinChannel runs the join handshake: resolve the link, verify the passcode
// when one is given, then join. The first failing step aborts the handshake and
// its error is returned. Only a successful join touches the identity cache.
func (s *Session) JoinChannel(ctx context.Context, params JoinParams) (*loco.JoinLinkResponse, error) {
	s.log.Info().Str("link_url", params.LinkURL).Bool("passcode", params.Passcode != nil).Msg("join channel")

	st := &joinState{params: params, step: stepJoinInfo}
	for st.step != stepDone {
		step := st.step
		if err := s.advance(ctx, st); err != nil {
			s.log.Warn().Err(err).Str("step", step.String()).Msg("join channel failed")
			return nil, fmt.Errorf("%s: %w", step, err)
		}
	}

	s.users.applyRoster(st.result.ChatRoom.Members)
	s.log.Info().
		Int64("chat_id", st.result.ChatRoom.ChatID).
		Int("members", len(st.result.ChatRoom.Members)).
		Msg("joined successfully")
	return st.result, nil
}

// advance executes the current step and moves st to the next one.
func (s *Session) advance(ctx context.Context, st *joinState) error {
	switch st.step {
	case stepJoinInfo:
		info, err := s.conn.JoinInfo(ctx, loco.JoinInfoRequest{
			LinkURL: st.params.LinkURL,
			Referer: joinInfoReferer,
		})
		if err != nil {
			return err
		}
		s.log.Info().Int64("link_id", info.OpenLink.LinkID).Str("name", info.OpenLink.Name).Msg("join info")
		st.link = &info.OpenLink
		if st.params.Passcode != nil {
			st.step = stepCheckJoin
		} else {
			st.step = stepJoinLink
		}
	case stepCheckJoin:
		check, err := s.conn.CheckJoin(ctx, loco.CheckJoinRequest{
			LinkID:   st.link.LinkID,
			Passcode: *st.params.Passcode,
		})
		if err != nil {
			return err
		}
		s.log.Info().Int64("link_id", st.link.LinkID).Msg("check join passed")
		token := check.Token
		st.token = &token
		st.step = stepJoinLink
	case stepJoinLink:
		res, err := s.conn.JoinLink(ctx, loco.JoinLinkRequest{
			LinkID:  st.link.LinkID,
			Referer: joinLinkReferer,
			Profile: loco.JoinProfile{
				ProfileType: loco.ProfileTypeKakaoAnon,
				Nickname:    st.params.Nickname,
				ProfilePath: st.params.ProfilePath,
			},
			Token: st.token,
		})
		if err != nil {
			return err
		}
		st.result = res
		st.step = stepDone
	default:
		return fmt.Errorf("unexpected join step %d", st.step)
	}
	return nil
}
