package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testDevice() Device {
	return Device{
		Name:       "TEST_DEVICE",
		UUID:       "device-uuid",
		Language:   "ko",
		AppVersion: "3.4.7",
		OSVersion:  "10.0",
	}
}

func TestLoginClientSendsDeviceForm(t *testing.T) {
	dev := testDevice()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/win32/account/login.json" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		checks := map[string]string{
			"email":       "user@example.com",
			"password":    "secret",
			"device_uuid": "device-uuid",
			"device_name": "TEST_DEVICE",
			"forced":      "true",
			"permanent":   "true",
		}
		for k, want := range checks {
			if got := r.PostForm.Get(k); got != want {
				t.Errorf("form %s: got %q want %q", k, got, want)
			}
		}
		if got := r.Header.Get("A"); got != "win32/3.4.7/ko" {
			t.Errorf("A header: %q", got)
		}
		if got := r.Header.Get("X-VC"); got != dev.XVC("user@example.com") {
			t.Errorf("X-VC header: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "KT/3.4.7 Wd/10.0 ko" {
			t.Errorf("User-Agent header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":        0,
			"userId":        405979308,
			"access_token":  "access",
			"refresh_token": "refresh",
		})
	}))
	defer srv.Close()

	c := NewLoginClient(srv.URL+"/win32/", dev)
	cred, err := c.Login(context.Background(), "user@example.com", "secret", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if cred.UserID != 405979308 || cred.AccessToken != "access" || cred.RefreshToken != "refresh" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestLoginClientRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":-100,"message":"device not registered"}`))
	}))
	defer srv.Close()

	_, err := NewLoginClient(srv.URL, testDevice()).Login(context.Background(), "user@example.com", "secret", false)
	var le *LoginError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoginError, got %v", err)
	}
	if le.Status != -100 || !strings.Contains(le.Error(), "device not registered") {
		t.Fatalf("unexpected error: %v", le)
	}
}

func TestLoginClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewLoginClient(srv.URL, testDevice()).Login(context.Background(), "user@example.com", "secret", false)
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected http error, got %v", err)
	}
}

func TestDeviceHeaders(t *testing.T) {
	dev := testDevice()
	if dev.OS() != "win32" {
		t.Fatalf("unexpected os %q", dev.OS())
	}
	xvc := dev.XVC("user@example.com")
	if len(xvc) != 16 {
		t.Fatalf("expected 16 char xvc, got %q", xvc)
	}
	if xvc == dev.XVC("other@example.com") {
		t.Fatalf("xvc does not depend on email")
	}
	if a, b := NewDeviceUUID(), NewDeviceUUID(); a == b || a == "" {
		t.Fatalf("device uuids not unique: %q %q", a, b)
	}
}
