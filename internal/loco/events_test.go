package loco

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodePush(t *testing.T) {
	tests := []struct {
		name  string
		push  Packet
		check func(t *testing.T, ev Event)
	}{
		{
			name: "chat without nickname",
			push: Packet{Method: PushMsg, Data: json.RawMessage(`{"chatId":5,"chatLog":{"logId":11,"authorId":3,"message":"hi","type":1}}`)},
			check: func(t *testing.T, ev Event) {
				chat, ok := ev.(*ChatEvent)
				if !ok {
					t.Fatalf("expected *ChatEvent, got %T", ev)
				}
				if chat.SenderNickname != nil || chat.Chat.Message != "hi" || chat.Chat.Type != ChatTypeText {
					t.Fatalf("unexpected chat event: %+v", chat)
				}
			},
		},
		{
			name: "read watermark",
			push: Packet{Method: PushDecUnread, Data: json.RawMessage(`{"chatId":5,"userId":2,"watermark":99}`)},
			check: func(t *testing.T, ev Event) {
				read, ok := ev.(*ChatReadEvent)
				if !ok || read.Watermark != 99 || read.UserID != 2 {
					t.Fatalf("unexpected read event: %#v", ev)
				}
			},
		},
		{
			name: "kickout without payload",
			push: Packet{Method: PushKickout},
			check: func(t *testing.T, ev Event) {
				if _, ok := ev.(*KickoutEvent); !ok {
					t.Fatalf("expected *KickoutEvent, got %T", ev)
				}
			},
		},
		{
			name: "malformed profile",
			push: Packet{Method: PushSyncLinkPf, Data: json.RawMessage(`[]`)},
			check: func(t *testing.T, ev Event) {
				errEv, ok := ev.(*ErrorEvent)
				if !ok {
					t.Fatalf("expected *ErrorEvent, got %T", ev)
				}
				var syntaxErr *json.UnmarshalTypeError
				if !errors.As(errEv, &syntaxErr) {
					t.Fatalf("expected wrapped json error, got %v", errEv.Err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DecodePush(tt.push))
		})
	}
}
