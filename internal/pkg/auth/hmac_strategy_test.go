package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func signedToken(s *HMACStrategy, payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s:%s", payload, s.sign(payload))))
}

func TestNewHMACStrategy_DefaultTTL(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy == nil {
		t.Fatal("expected strategy instance")
	}
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != 24*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestHMACStrategy_IssueAndParse(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})

	cases := []Claims{
		{UserID: 42},
		{UserID: 7, Admin: true},
	}
	for _, want := range cases {
		token, err := strategy.IssueToken(want)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		got, err := strategy.ParseToken(token)
		if err != nil {
			t.Fatalf("parse token: %v", err)
		}
		if got != want {
			t.Fatalf("expected claims %+v, got %+v", want, got)
		}
	}
}

func TestHMACStrategy_ScopeCannotBeEscalated(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken(Claims{UserID: 5})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(token)
	parts := strings.Split(string(raw), ":")
	parts[1] = scopeAdmin
	forged := base64.StdEncoding.EncodeToString([]byte(strings.Join(parts, ":")))
	if _, err := strategy.ParseToken(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestHMACStrategy_ParseRejectsMalformed(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	future := time.Now().Add(time.Minute).Unix()
	past := time.Now().Add(-time.Minute).Unix()

	tests := map[string]string{
		"not base64":      "not-base64",
		"too few parts":   base64.StdEncoding.EncodeToString([]byte("only:two")),
		"bad user id":     signedToken(strategy, fmt.Sprintf("abc:c:%d", future)),
		"zero user id":    signedToken(strategy, fmt.Sprintf("0:c:%d", future)),
		"unknown scope":   signedToken(strategy, fmt.Sprintf("10:x:%d", future)),
		"bad expiry":      signedToken(strategy, "10:c:not-a-number"),
		"expired":         signedToken(strategy, fmt.Sprintf("10:c:%d", past)),
		"other secret":    signedToken(NewHMACStrategy("other", Options{}), fmt.Sprintf("10:c:%d", future)),
		"tampered digest": base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("10:c:%d:tampered", future))),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestHMACStrategy_Name(t *testing.T) {
	strategy := NewHMACStrategy("secret", Options{})
	if strategy.Name() != "hmac" {
		t.Fatalf("unexpected name: %s", strategy.Name())
	}
}
