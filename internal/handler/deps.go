package handler

import (
	"net/http"

	"twoogle/internal/app/board"
	"twoogle/internal/app/live"
	"twoogle/internal/app/storage"
	"twoogle/internal/app/user"
	"twoogle/internal/configs"
	"twoogle/internal/pkg/auth/jwt"
)

type AppDeps struct {
	Config  *configs.AppConfig
	Service *board.Service
	Hub     *live.Hub

	// StorageService is nil when no S3 bucket is configured.
	StorageService storage.StorageService
}

// session rebuilds the acting session from the request token. Requests
// without a token act as the guest account; rejected tokens never get here.
func (d *AppDeps) session(r *http.Request) (*user.Session, error) {
	return d.Service.SessionFor(r.Context(), jwt.UsernameFromRequest(r))
}
