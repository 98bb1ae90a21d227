package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("secret"), Issuer: "kakaosession", Audience: "control", TTL: time.Hour}

	token, err := GenerateToken(cfg, "ops")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(cfg, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Operator != "ops" || claims.Subject != "ops" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejects(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("secret"), Issuer: "kakaosession", Audience: "control", TTL: time.Hour}

	tests := []struct {
		name string
		gen  *JWTConfig
		op   string
	}{
		{name: "wrong secret", gen: &JWTConfig{Secret: []byte("other"), Issuer: "kakaosession", Audience: "control", TTL: time.Hour}, op: "ops"},
		{name: "wrong issuer", gen: &JWTConfig{Secret: []byte("secret"), Issuer: "someone", Audience: "control", TTL: time.Hour}, op: "ops"},
		{name: "wrong audience", gen: &JWTConfig{Secret: []byte("secret"), Issuer: "kakaosession", Audience: "public", TTL: time.Hour}, op: "ops"},
		{name: "expired", gen: &JWTConfig{Secret: []byte("secret"), Issuer: "kakaosession", Audience: "control", TTL: -time.Minute}, op: "ops"},
		{name: "missing operator", gen: cfg, op: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.gen, tt.op)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if _, err := ValidateToken(cfg, token); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}
