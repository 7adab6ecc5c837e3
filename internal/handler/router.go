/*
Package handler provides the HTTP handlers and routing setup for the Twoogle server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and rate limiting before delegating requests to specific handlers (API and WebSocket).
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"twoogle/internal/pkg/auth/jwt"
	"twoogle/internal/pkg/limiter"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/resp"
)

const (
	AuthRate  = 0.2
	AuthBurst = 5
	PostRate  = 1
	PostBurst = 5
	JoinRate  = 0.2
	JoinBurst = 5
)

// posterKey buckets authenticated posters by account and guests by IP.
func posterKey(r *http.Request) string {
	if username := jwt.UsernameFromRequest(r); username != "" {
		return "user:" + username
	}
	return "ip:" + limiter.ClientIP(r)
}

// Router sets up the main HTTP routing table (chi.Router) for the application.
// The rate limiters' cleanup goroutines stop when ctx is done.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	authLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(AuthRate), AuthBurst)
	postLimiter := limiter.NewKeyedRateLimiter(ctx, rate.Limit(PostRate), PostBurst, posterKey)
	joinLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(JoinRate), JoinBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger("/health"))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":    "ok",
			"service":   "Twoogle Server",
			"listeners": deps.Hub.ListenerCount(),
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/auth", func(auth chi.Router) {
			auth.Use(authLimiter.Middleware)
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
		})

		api.Route("/user", func(u chi.Router) {
			u.Post("/profile", HandleUpdateProfile(deps))
			u.Post("/avatar/presign", HandlePresignAvatarURL(deps))
			u.Post("/avatar", HandleConfirmAvatar(deps))
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/", HandleListUsers(deps))
			users.Get("/{username}/profile", HandleGetProfile(deps))
			users.Get("/{username}/avatar", HandleGetAvatar(deps))
			users.Get("/{username}/messages", HandleUserMessages(deps))
		})

		api.Route("/messages", func(messages chi.Router) {
			messages.With(postLimiter.Middleware).Post("/", HandlePostMessage(deps))
			messages.Get("/recent", HandleRecent(deps))
			messages.Get("/replies", HandleReplies(deps))
			messages.Get("/subscribed", HandleSubscribed(deps))
			messages.Get("/{id}", HandleThread(deps))
		})

		api.Route("/tags", func(tags chi.Router) {
			tags.Get("/", HandleTags(deps))
			tags.Get("/{tag}/messages", HandleTagMessages(deps))
		})

		api.Route("/subscriptions", func(subs chi.Router) {
			subs.Get("/", HandleListSubscriptions(deps))
			subs.Post("/", HandleSubscribe(deps))
			subs.Delete("/{username}", HandleUnsubscribe(deps))
		})
	})

	r.With(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret)).
		Get("/ws/feed", HandleWebSocket(deps, wsUpgrader, joinLimiter))

	return r
}
