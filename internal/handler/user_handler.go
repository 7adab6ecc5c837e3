package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"twoogle/internal/app/storage"
	"twoogle/internal/app/user"
	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/logx"
	"twoogle/internal/pkg/req"
	"twoogle/internal/pkg/resp"
)

const avatarDeleteTimeout = 10 * time.Second

// HandleListUsers returns every registered username in registration order.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := deps.Service.Users(r.Context())
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		resp.RespondSuccess(w, r, map[string]any{"users": names})
	}
}

// HandleGetProfile shows the profile of {username}. Hidden profiles are
// only returned to their owner.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		u, err := deps.Service.Profile(r.Context(), sess, chi.URLParam(r, "username"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":      u,
			"hasAvatar": u.AvatarKey != "",
			"text":      u.FormatProfile(),
		})
	}
}

// HandleUpdateProfile replaces the caller's profile.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		var input user.Profile
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Service.UpdateProfile(r.Context(), sess, input); err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"user": sess.User()})
	}
}

type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// HandlePresignAvatarURL issues a short-lived upload URL for a new avatar.
// The client PUTs the image there and then confirms the key.
func HandlePresignAvatarURL(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled))
			return
		}

		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if sess.IsGuest() {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := storage.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := storage.NewAvatarKey(sess.Username(), input.FileName)
		url, err := deps.StorageService.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to generate avatar upload URL", "username", sess.Username())
			resp.RespondError(w, r, errs.Wrap(errs.ErrFileStorageFailed, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"key":       key,
			"uploadUrl": url,
			"expiresIn": int(storage.PresignedURLDuration.Seconds()),
		})
	}
}

type ConfirmAvatarInput struct {
	Key string `json:"key"`
}

// HandleConfirmAvatar records an uploaded avatar once the object exists and
// passes the size and type checks. The previous avatar object is deleted.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled))
			return
		}

		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if sess.IsGuest() {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input ConfirmAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if !storage.OwnsAvatarKey(sess.Username(), input.Key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		info, err := deps.StorageService.ObjectInfo(r.Context(), input.Key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if err != nil {
			resp.RespondError(w, r, errs.Wrap(errs.ErrFileStorageFailed, err))
			return
		}
		if customErr := storage.ValidateFileSize(info.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := storage.ValidateFileType(input.Key, info.ContentType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		previous, err := deps.Service.SetAvatar(r.Context(), sess, input.Key)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		if previous != "" && previous != input.Key {
			go func(k string) {
				ctx, cancel := context.WithTimeout(context.Background(), avatarDeleteTimeout)
				defer cancel()
				if err := deps.StorageService.Delete(ctx, k); err != nil {
					logx.Warn("Failed to delete previous avatar", "key", k, "error", err.Error())
				}
			}(previous)
		}

		resp.RespondSuccess(w, r, map[string]any{"key": input.Key})
	}
}

// HandleGetAvatar redirects to a presigned download URL for the avatar of
// {username}. Avatars follow the visibility of the profile.
func HandleGetAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.StorageService == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled))
			return
		}

		sess, err := deps.session(r)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		u, err := deps.Service.Profile(r.Context(), sess, chi.URLParam(r, "username"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}
		if u.AvatarKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrAvatarNotFound))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), u.AvatarKey, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to generate avatar download URL", "username", u.Username)
			resp.RespondError(w, r, errs.Wrap(errs.ErrFileStorageFailed, err))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}
