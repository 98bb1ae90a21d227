package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/auth"
	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

const (
	testChatID = int64(18384565413113921)
	testLinkID = int64(283608594)
)

// fakeFacade answers control API calls with canned data.
type fakeFacade struct {
	mu sync.Mutex

	channels map[int64]loco.ChannelData
	users    map[int64]session.Identity

	join     *loco.JoinLinkResponse
	sent     *loco.Chatlog
	logs     []loco.Chatlog
	err      error
	lastJoin session.JoinParams
	lastSend loco.Chat
	lastHide loco.HideMsgRequest
	lastKick loco.KickMemberRequest
	lastDel  loco.DeleteMsgRequest
	since    int64
}

func newFakeFacade() *fakeFacade {
	return &fakeFacade{
		channels: map[int64]loco.ChannelData{
			testChatID: {ChatID: testChatID, Type: "OM", Kind: loco.ChannelOpen, LinkID: testLinkID},
			5:          {ChatID: 5, Type: "DirectChat", Kind: loco.ChannelNormal},
		},
		users: map[int64]session.Identity{},
	}
}

func (f *fakeFacade) Channels() map[int64]loco.ChannelData { return f.channels }

func (f *fakeFacade) Channel(chatID int64) (loco.ChannelData, bool) {
	ch, ok := f.channels[chatID]
	return ch, ok
}

func (f *fakeFacade) KnownUser(userID int64) (session.Identity, bool) {
	u, ok := f.users[userID]
	return u, ok
}

func (f *fakeFacade) UserID() int64 { return 405979308 }

func (f *fakeFacade) JoinChannel(_ context.Context, params session.JoinParams) (*loco.JoinLinkResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastJoin = params
	return f.join, f.err
}

func (f *fakeFacade) Send(_ context.Context, chatID int64, chat loco.Chat, _ bool) (*loco.Chatlog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSend = chat
	if f.err != nil {
		return nil, f.err
	}
	out := *f.sent
	out.ChatID = chatID
	return &out, nil
}

func (f *fakeFacade) Delete(_ context.Context, req loco.DeleteMsgRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDel = req
	return f.err
}

func (f *fakeFacade) Hide(_ context.Context, req loco.HideMsgRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHide = req
	return f.err
}

func (f *fakeFacade) Kick(_ context.Context, req loco.KickMemberRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKick = req
	return f.err
}

func (f *fakeFacade) ChatLogs(_ context.Context, _ int64, since int64) ([]loco.Chatlog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.since = since
	return f.logs, f.err
}

func testJWTConfig() *auth.JWTConfig {
	return &auth.JWTConfig{Secret: []byte("test-secret"), Issuer: "kakaosession", TTL: time.Hour}
}

// newTestRouter returns the router and a valid bearer token.
func newTestRouter(t *testing.T, facade Facade) (http.Handler, string) {
	t.Helper()

	disabledLogger := zerolog.New(nil)
	jwtConfig := testJWTConfig()

	token, err := auth.GenerateToken(jwtConfig, "tester")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return NewRouter(facade, jwtConfig, []string{"http://localhost:3000"}, &disabledLogger), token
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}
