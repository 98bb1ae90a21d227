package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/kakaosession/internal/config"
	"github.com/vovakirdan/kakaosession/internal/loco"
)

type testBackend struct {
	logins     atomic.Int32
	loginLists atomic.Int32
	// accepted is the only access token LOGINLIST accepts.
	accepted atomic.Value
}

func startBackend(t *testing.T) (*testBackend, *httptest.Server) {
	t.Helper()

	b := &testBackend{}
	b.accepted.Store("access-1")

	mux := http.NewServeMux()
	mux.HandleFunc("/win32/account/login.json", func(w http.ResponseWriter, r *http.Request) {
		n := b.logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        0,
			"userId":        405979308,
			"access_token":  "access-" + strconv.Itoa(int(n)),
			"refresh_token": "refresh",
		})
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "done")

		ctx := r.Context()
		for {
			var p loco.Packet
			if err := wsjson.Read(ctx, conn, &p); err != nil {
				return
			}
			resp := loco.Packet{ID: p.ID, Method: p.Method}
			if p.Method == loco.MethodLoginList {
				b.loginLists.Add(1)
				var req loco.LoginListRequest
				_ = json.Unmarshal(p.Data, &req)
				if req.OAuthToken != b.accepted.Load().(string) {
					resp.Status = -950
				} else {
					resp.Data, _ = json.Marshal(loco.LoginListResponse{UserID: 405979308})
				}
			}
			if err := wsjson.Write(ctx, conn, resp); err != nil {
				return
			}
		}
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return b, ts
}

func newTestApp(t *testing.T, ts *httptest.Server) *App {
	t.Helper()

	cfg := config.Default()
	cfg.Email = "user@example.com"
	cfg.Password = "secret"
	cfg.StoreKey = "test-key"
	cfg.StorePath = filepath.Join(t.TempDir(), "test.db")
	cfg.AuthURL = ts.URL + "/win32"
	cfg.Endpoint = strings.Replace(ts.URL, "http", "ws", 1) + "/ws"

	logger := zerolog.Nop()
	a, err := New(context.Background(), &cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestConnectReusesStoredCredential(t *testing.T) {
	b, ts := startBackend(t)
	a := newTestApp(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for i := 0; i < 2; i++ {
		s, err := a.Connect(ctx)
		if err != nil {
			t.Fatalf("connect %d: %v", i, err)
		}
		if s.UserID() != 405979308 {
			t.Fatalf("unexpected user id %d", s.UserID())
		}
		_ = s.Close()
	}

	if got := b.logins.Load(); got != 1 {
		t.Fatalf("expected one account login, got %d", got)
	}
}

func TestConnectRefreshesRejectedCredential(t *testing.T) {
	b, ts := startBackend(t)
	a := newTestApp(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}
	_ = s.Close()

	// The stored access-1 token is now stale.
	b.accepted.Store("access-2")

	s, err = a.Connect(ctx)
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}
	_ = s.Close()

	if got := b.logins.Load(); got != 2 {
		t.Fatalf("expected a second login, got %d", got)
	}
	if got := b.loginLists.Load(); got != 3 {
		t.Fatalf("expected 3 login list attempts, got %d", got)
	}
}

func TestLogoutForcesFreshLogin(t *testing.T) {
	b, ts := startBackend(t)
	a := newTestApp(t, ts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}
	_ = s.Close()

	if err := a.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}

	s, err = a.Connect(ctx)
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}
	_ = s.Close()

	if got := b.logins.Load(); got != 2 {
		t.Fatalf("expected a login after logout, got %d", got)
	}
}

func TestJWTConfigFromSettings(t *testing.T) {
	_, ts := startBackend(t)
	a := newTestApp(t, ts)

	jc := a.JWTConfig()
	if jc.Issuer != "kakaosession" || jc.TTL != 24*time.Hour {
		t.Fatalf("unexpected jwt config: %+v", jc)
	}
}
