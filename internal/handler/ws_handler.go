/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which is responsible for rate limiting, reading
the live feed filter, upgrading the HTTP connection to WebSocket, and initiating the listener lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"twoogle/internal/app/live"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/limiter"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc that streams new public posts.
// The optional author and tag query parameters narrow the stream.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := limiter.ClientIP(r)
		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		query := r.URL.Query()
		filter := live.NewFilter(query.Get("author"), query.Get("tag"))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client := live.NewClient(deps.Hub, conn, sess.Username(), filter)
		if !deps.Hub.Register(client) {
			logx.Warn("WebSocket connection rejected: live hub stopped.", "client_id", client.ID())
			conn.Close()
			return
		}

		go client.WritePump()

		logx.Info("WebSocket listener connected", "client_id", client.ID(), "username", sess.Username())

		client.ReadPump()
	}
}
