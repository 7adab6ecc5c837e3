package jwt

import (
	"context"
	"net/http"
	"strings"

	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/resp"
)

// Define Context Key for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload (user identity) in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"

	// TokenQueryParam carries the token on WebSocket upgrades, where browsers cannot set headers.
	TokenQueryParam = "token"
)

// IdentityExtractorMiddleware attempts to extract and validate a JWT from the request.
// It injects the Payload into the Context upon success. Requests without any
// credentials pass through and act as the guest account; credentials that are
// present but rejected get ErrUnauthorized.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, present := tokenFromRequest(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided", "error", err.Error(), "path", r.URL.Path)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

// tokenFromRequest reads "Authorization: Bearer <token>", falling back to the
// token query parameter for WebSocket upgrades. present reports whether the
// client sent credentials at all; a malformed header yields an empty token.
func tokenFromRequest(r *http.Request) (token string, present bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", true
		}
		return strings.TrimSpace(parts[1]), true
	}

	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if token := r.URL.Query().Get(TokenQueryParam); token != "" {
			return token, true
		}
	}

	return "", false
}

// WithPayload returns a copy of ctx carrying payload.
func WithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// In contexts where IdentityExtractorMiddleware is used, a nil return means the request acts as the guest account.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}

// UsernameFromRequest returns the authenticated username, empty for guests.
func UsernameFromRequest(r *http.Request) string {
	if payload := GetPayloadFromContext(r); payload != nil {
		return payload.Username
	}
	return ""
}
