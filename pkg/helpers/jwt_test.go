package helpers

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, exp, err := m.GenerateSessionToken("user-1", "sid-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry not in the future")
	}

	claims, err := m.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "sid-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewJWTManager("secret-a", time.Hour).GenerateSessionToken("user-1", "sid-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := NewJWTManager("secret-b", time.Hour).ParseSessionToken(token); err == nil {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestSessionTokenExpired(t *testing.T) {
	token, _, err := NewJWTManager("secret", -time.Minute).GenerateSessionToken("user-1", "sid-1")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := NewJWTManager("secret", -time.Minute).ParseSessionToken(token); err == nil {
		t.Fatal("expired token accepted")
	}
}
