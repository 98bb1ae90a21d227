// Command fake_gateway serves the account login endpoint and a scripted
// websocket gateway for local runs of kakaosession.
//
//	go run ./scripts/fake_gateway -addr :9000
//	KAKAOSESSION_AUTH_URL=http://localhost:9000/win32 \
//	KAKAOSESSION_ENDPOINT=ws://localhost:9000/ws kakaosession run
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/kakaosession/internal/loco"
)

const (
	userID = int64(405979308)
	chatID = int64(18384565413113921)
	linkID = int64(283608594)
)

var nextLogID atomic.Int64

func main() {
	if err := run(); err != nil {
		log.Printf("fake_gateway: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", ":9000", "listen address")
	every := flag.Duration("push-every", 10*time.Second, "interval between pushed chats, 0 disables")
	passcode := flag.String("passcode", "", "passcode required by CHECKJOIN, empty accepts any")
	flag.Parse()

	nextLogID.Store(3032496737807724544)

	mux := http.NewServeMux()
	mux.HandleFunc("/win32/account/login.json", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("login email=%s device=%s", r.FormValue("email"), r.FormValue("device_name"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        0,
			"userId":        userID,
			"access_token":  "fake-access",
			"refresh_token": "fake-refresh",
		})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Printf("accept: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		serve(r.Context(), conn, *every, *passcode)
	})

	log.Printf("fake gateway listening on %s", *addr)
	server := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	return server.ListenAndServe()
}

func serve(ctx context.Context, conn *websocket.Conn, every time.Duration, passcode string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if every > 0 {
		go pushChats(ctx, conn, every)
	}

	for {
		var p loco.Packet
		if err := wsjson.Read(ctx, conn, &p); err != nil {
			log.Printf("read: %v", err)
			return
		}
		log.Printf("request id=%d method=%s", p.ID, p.Method)

		status, data := answer(p, passcode)
		raw, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal: %v", err)
			return
		}
		if err := wsjson.Write(ctx, conn, loco.Packet{ID: p.ID, Method: p.Method, Status: status, Data: raw}); err != nil {
			log.Printf("write: %v", err)
			return
		}
	}
}

func answer(p loco.Packet, passcode string) (int, any) {
	switch p.Method {
	case loco.MethodLoginList:
		return loco.StatusOK, loco.LoginListResponse{
			UserID: userID,
			ChatDatas: []loco.ChannelData{
				{ChatID: chatID, Type: "OM", Kind: loco.ChannelOpen, Title: "fake open chat", MemberCount: 2, LinkID: linkID},
			},
		}
	case loco.MethodJoinInfo:
		return loco.StatusOK, loco.JoinInfoResponse{OpenLink: openLink()}
	case loco.MethodCheckJoin:
		var req loco.CheckJoinRequest
		_ = json.Unmarshal(p.Data, &req)
		if passcode != "" && req.Passcode != passcode {
			return -401, nil
		}
		return loco.StatusOK, loco.CheckJoinResponse{Token: "join-token"}
	case loco.MethodJoinLink:
		var req loco.JoinLinkRequest
		_ = json.Unmarshal(p.Data, &req)
		if passcode != "" && req.Token == nil {
			return -401, nil
		}
		return loco.StatusOK, loco.JoinLinkResponse{
			OpenLink: openLink(),
			ChatRoom: loco.ChatRoom{
				ChatID: chatID,
				Type:   "OM",
				Members: []loco.ChatRoomMember{
					{UserID: 1, Nickname: "host"},
					{UserID: userID, Nickname: req.Profile.Nickname},
				},
			},
		}
	case loco.MethodWrite:
		var req loco.WriteRequest
		_ = json.Unmarshal(p.Data, &req)
		logID := nextLogID.Add(1)
		return loco.StatusOK, loco.WriteResponse{
			ChatID: req.ChatID,
			LogID:  logID,
			Chatlog: loco.Chatlog{
				LogID:     logID,
				ChatID:    req.ChatID,
				Type:      req.Type,
				SenderID:  userID,
				Message:   req.Message,
				SendAt:    time.Now().Unix(),
				MessageID: req.MessageID,
			},
		}
	case loco.MethodDeleteMsg, loco.MethodRewrite, loco.MethodKickMember:
		return loco.StatusOK, struct{}{}
	case loco.MethodChatLogs:
		return loco.StatusOK, loco.ChatLogsResponse{ChatLogs: []loco.Chatlog{}}
	default:
		return -500, nil
	}
}

func pushChats(ctx context.Context, conn *websocket.Conn, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	nickname := "host"
	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		logID := nextLogID.Add(1)
		raw, _ := json.Marshal(map[string]any{
			"chatId": chatID,
			"li":     linkID,
			"chatLog": loco.Chatlog{
				LogID:    logID,
				ChatID:   chatID,
				Type:     loco.ChatTypeText,
				SenderID: 1,
				Message:  fmt.Sprintf("ping %d", n),
				SendAt:   time.Now().Unix(),
			},
			"authorNickname": nickname,
		})
		if err := wsjson.Write(ctx, conn, loco.Packet{Method: loco.PushMsg, Data: raw}); err != nil {
			return
		}
	}
}

func openLink() loco.OpenLink {
	return loco.OpenLink{LinkID: linkID, Name: "fake open chat", URL: "https://open.kakao.com/o/gFake"}
}
