package loco

import (
	"encoding/json"
	"fmt"
)

// Event is a decoded server push. The set of implementations is closed.
type Event interface {
	event()
}

// ChatEvent is a chat message delivered to a channel.
type ChatEvent struct {
	ChatID         int64
	LinkID         *int64
	Chat           Chatlog
	SenderNickname *string
}

// ChatReadEvent moves the read watermark of a user in a channel.
type ChatReadEvent struct {
	ChatID    int64
	UserID    int64
	Watermark int64
}

// ProfileChangedEvent carries the full new profile of an open channel member.
type ProfileChangedEvent struct {
	LinkID int64
	User   OpenLinkUser
}

// KickoutEvent means the server terminated this login.
type KickoutEvent struct {
	Reason int
}

// UnhandledEvent is a push this client does not interpret.
type UnhandledEvent struct {
	Method string
	Data   json.RawMessage
}

// ErrorEvent reports a push that could not be processed.
type ErrorEvent struct {
	Method string
	Err    error
}

func (*ChatEvent) event()           {}
func (*ChatReadEvent) event()       {}
func (*ProfileChangedEvent) event() {}
func (*KickoutEvent) event()        {}
func (*UnhandledEvent) event()      {}
func (*ErrorEvent) event()          {}

func (e *ErrorEvent) Error() string {
	return fmt.Sprintf("push %s: %v", e.Method, e.Err)
}

func (e *ErrorEvent) Unwrap() error { return e.Err }

type msgPush struct {
	ChatID         int64   `json:"chatId"`
	LinkID         *int64  `json:"li,omitempty"`
	Chatlog        Chatlog `json:"chatLog"`
	AuthorNickname *string `json:"authorNickname,omitempty"`
}

type decUnreadPush struct {
	ChatID    int64 `json:"chatId"`
	UserID    int64 `json:"userId"`
	Watermark int64 `json:"watermark"`
}

type syncLinkPfPush struct {
	LinkID int64        `json:"li"`
	User   OpenLinkUser `json:"olu"`
}

type kickoutPush struct {
	Reason int `json:"reason"`
}

// DecodePush maps a push packet to its typed event. It never fails:
// undecodable payloads become *ErrorEvent, unknown methods *UnhandledEvent.
func DecodePush(p Packet) Event {
	switch p.Method {
	case PushMsg:
		var msg msgPush
		if err := json.Unmarshal(p.Data, &msg); err != nil {
			return &ErrorEvent{Method: p.Method, Err: err}
		}
		return &ChatEvent{
			ChatID:         msg.ChatID,
			LinkID:         msg.LinkID,
			Chat:           msg.Chatlog,
			SenderNickname: msg.AuthorNickname,
		}
	case PushDecUnread:
		var read decUnreadPush
		if err := json.Unmarshal(p.Data, &read); err != nil {
			return &ErrorEvent{Method: p.Method, Err: err}
		}
		return &ChatReadEvent{ChatID: read.ChatID, UserID: read.UserID, Watermark: read.Watermark}
	case PushSyncLinkPf:
		var pf syncLinkPfPush
		if err := json.Unmarshal(p.Data, &pf); err != nil {
			return &ErrorEvent{Method: p.Method, Err: err}
		}
		return &ProfileChangedEvent{LinkID: pf.LinkID, User: pf.User}
	case PushKickout:
		var kick kickoutPush
		if len(p.Data) > 0 {
			if err := json.Unmarshal(p.Data, &kick); err != nil {
				return &ErrorEvent{Method: p.Method, Err: err}
			}
		}
		return &KickoutEvent{Reason: kick.Reason}
	default:
		return &UnhandledEvent{Method: p.Method, Data: p.Data}
	}
}
