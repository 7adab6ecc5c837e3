package jwt

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken(&Payload{Username: "alice", UserType: UserTypeRegistered}, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	payload, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if payload.Username != "alice" || payload.Issuer != TokenIssuer || payload.Id == "" {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := ParseToken(token, "another-secret-another-secret-00"); err == nil {
		t.Error("wrong secret should fail")
	}

	expired, _ := GenerateToken(&Payload{Username: "alice"}, testSecret, -time.Minute)
	if _, err := ParseToken(expired, testSecret); err == nil {
		t.Error("expired token should fail")
	}
}

func TestIdentityExtractorMiddleware(t *testing.T) {
	token, err := GenerateToken(&Payload{Username: "alice", UserType: UserTypeRegistered}, testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	seen := "unset"
	handler := IdentityExtractorMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UsernameFromRequest(r)
	}))

	tests := []struct {
		name   string
		target string
		header map[string]string
		want   string
		status int
	}{
		{"bearer", "/", map[string]string{"Authorization": "Bearer " + token}, "alice", http.StatusOK},
		{"missing", "/", nil, "", http.StatusOK},
		{"query without upgrade", "/api/users?token=" + token, nil, "", http.StatusOK},
		{"websocket query", "/ws/feed?token=" + token, map[string]string{"Upgrade": "websocket"}, "alice", http.StatusOK},
		{"websocket without token", "/ws/feed", map[string]string{"Upgrade": "websocket"}, "", http.StatusOK},
		{"bad scheme", "/", map[string]string{"Authorization": "Basic " + token}, "unset", http.StatusUnauthorized},
		{"garbage", "/", map[string]string{"Authorization": "Bearer nope"}, "unset", http.StatusUnauthorized},
		{"tampered", "/", map[string]string{"Authorization": "Bearer " + token[:strings.LastIndex(token, ".")+1] + "invalidsignature"}, "unset", http.StatusUnauthorized},
		{"websocket bad query", "/ws/feed?token=nope", map[string]string{"Upgrade": "websocket"}, "unset", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		seen = "unset"
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		for k, v := range tt.header {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if seen != tt.want {
			t.Errorf("%s: username = %q, want %q", tt.name, seen, tt.want)
		}
		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.status)
		}
	}
}
