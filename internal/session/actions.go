package session

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/utils"
)

// Send writes a chat to a channel and returns the persisted log.
// noSeen suppresses the read receipt for the sender.
// A zero chat.MessageID is replaced with a generated client id.
func (s *Session) Send(ctx context.Context, chatID int64, chat loco.Chat, noSeen bool) (*loco.Chatlog, error) {
	if chat.MessageID == 0 {
		chat.MessageID = utils.NewMessageID()
	}
	s.log.Info().Int64("chat_id", chatID).Int("type", int(chat.Type)).Int64("msg_id", chat.MessageID).Msg("send chat")

	res, err := s.conn.Write(ctx, loco.WriteRequest{
		ChatID:     chatID,
		Type:       chat.Type,
		MessageID:  chat.MessageID,
		Message:    chat.Message,
		NoSeen:     noSeen,
		Attachment: chat.Attachment,
		Supplement: chat.Supplement,
	})
	if err != nil {
		return nil, fmt.Errorf("send chat: %w", err)
	}

	chatlog := res.Chatlog
	if chatlog.LogID == 0 {
		chatlog.LogID = res.LogID
	}
	if chatlog.ChatID == 0 {
		chatlog.ChatID = chatID
	}
	s.log.Info().Int64("chat_id", chatID).Int64("log_id", chatlog.LogID).Msg("sent chat successfully")
	return &chatlog, nil
}

// Delete removes a message for every member of the channel.
func (s *Session) Delete(ctx context.Context, req loco.DeleteMsgRequest) error {
	s.log.Info().Int64("chat_id", req.ChatID).Int64("log_id", req.LogID).Msg("delete message")
	if err := s.conn.DeleteMsg(ctx, req); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	s.log.Info().Int64("log_id", req.LogID).Msg("deleted message successfully")
	return nil
}

// Hide hides a message inside an open channel. Unlike Delete it is reversible.
func (s *Session) Hide(ctx context.Context, req loco.HideMsgRequest) error {
	s.log.Info().Int64("link_id", req.LinkID).Int64("chat_id", req.ChatID).Int64("log_id", req.LogID).Msg("hide message")
	if err := s.conn.HideMsg(ctx, req); err != nil {
		return fmt.Errorf("hide message: %w", err)
	}
	s.log.Info().Int64("log_id", req.LogID).Msg("hid message successfully")
	return nil
}

// Kick removes a member from an open channel immediately.
func (s *Session) Kick(ctx context.Context, req loco.KickMemberRequest) error {
	s.log.Info().Int64("link_id", req.LinkID).Int64("chat_id", req.ChatID).Int64("user_id", req.UserID).Msg("kick user")
	if err := s.conn.KickMember(ctx, req); err != nil {
		return fmt.Errorf("kick user: %w", err)
	}
	s.log.Info().Int64("user_id", req.UserID).Msg("kicked user successfully")
	return nil
}

// ChatLogs fetches one page of logs newer than since, ascending by log id.
// Paginate by calling again with the last returned log id.
func (s *Session) ChatLogs(ctx context.Context, chatID, since int64) ([]loco.Chatlog, error) {
	s.log.Info().Int64("chat_id", chatID).Int64("since", since).Msg("get chat logs")
	res, err := s.conn.ChatLogs(ctx, loco.ChatLogsRequest{
		ChatIDs: []int64{chatID},
		Sinces:  []int64{since},
	})
	if err != nil {
		return nil, fmt.Errorf("get chat logs: %w", err)
	}

	logs := make([]loco.Chatlog, 0, len(res.ChatLogs))
	for _, l := range res.ChatLogs {
		if l.LogID > since {
			logs = append(logs, l)
		}
	}
	slices.SortStableFunc(logs, func(a, b loco.Chatlog) int {
		return cmp.Compare(a.LogID, b.LogID)
	})
	s.log.Info().Int64("chat_id", chatID).Int("count", len(logs)).Msg("got chat logs successfully")
	return logs, nil
}
