/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"

	"twoogle/internal/app/board"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/auth/jwt"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/req"
	"twoogle/internal/pkg/resp"
)

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Profile is optional; omitting it registers an account without a profile.
	Profile *user.Profile `json:"profile,omitempty"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates an account and returns a token for it.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		creds := board.Credentials{Username: input.Username, Password: input.Password}
		u, err := deps.Service.Register(r.Context(), user.NewSession(), creds, input.Profile)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondWithToken(w, r, deps, u, true)
	}
}

// HandleLogin verifies user credentials and issues a JWT token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if jwt.GetPayloadFromContext(r) != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyLoggedIn))
			return
		}

		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Service.Login(r.Context(), user.NewSession(), board.Credentials(input))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondWithToken(w, r, deps, u, false)
	}
}

func respondWithToken(w http.ResponseWriter, r *http.Request, deps *AppDeps, u *user.User, created bool) {
	payload := &jwt.Payload{
		Username: u.Username,
		UserType: jwt.UserTypeRegistered,
	}

	token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.UserIdentityExpiration)
	if err != nil {
		logx.Error(err, "failed to generate token", "username", u.Username)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	data := map[string]any{
		"token": token,
		"user":  u,
	}
	if created {
		resp.RespondCreated(w, r, data)
		return
	}
	resp.RespondSuccess(w, r, data)
}
