package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"twoogle/internal/pkg/req"
	"twoogle/internal/pkg/resp"
)

type SubscribeInput struct {
	Username string `json:"username"`
}

// HandleListSubscriptions lists the users the caller follows.
func HandleListSubscriptions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		names, err := deps.Service.Subscriptions(r.Context(), sess)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if names == nil {
			names = []string{}
		}

		resp.RespondSuccess(w, r, map[string]any{"subscriptions": names})
	}
}

// HandleSubscribe makes the caller follow the posted username.
func HandleSubscribe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		var input SubscribeInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Service.Subscribe(r.Context(), sess, input.Username); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"username": input.Username})
	}
}

// HandleUnsubscribe stops following {username}.
func HandleUnsubscribe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		username := chi.URLParam(r, "username")
		if err := deps.Service.Unsubscribe(r.Context(), sess, username); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"username": username})
	}
}
