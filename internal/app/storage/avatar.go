package storage

import (
	"path/filepath"
	"strings"
	"time"

	"twoogle/internal/pkg/errs"
	"twoogle/internal/pkg/randx"
)

const (
	// MaxAvatarSizeMB is the maximum allowed avatar size in megabytes.
	MaxAvatarSizeMB = 2

	// MaxAvatarSize is the maximum allowed avatar size in bytes.
	MaxAvatarSize = MaxAvatarSizeMB * 1024 * 1024

	// PresignedURLDuration is how long upload and download URLs stay valid.
	PresignedURLDuration = 5 * time.Minute

	avatarKeyPrefix = "avatars/"
)

// AllowedMIMETypes defines the set of permitted avatar MIME types.
var AllowedMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// ExtToMIME maps file extensions to their corresponding MIME types.
var ExtToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ValidateFileSize checks if the provided file size is within acceptable limits.
func ValidateFileSize(fileSize int64) *errs.CustomError {
	if fileSize <= 0 {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrFileSizeTooLarge)
	}

	return nil
}

// ValidateFileType checks that the extension of fileName is an allowed image
// type and agrees with mimeType.
func ValidateFileType(fileName string, mimeType string) *errs.CustomError {
	lowerMimeType := strings.ToLower(mimeType)

	if _, ok := AllowedMIMETypes[lowerMimeType]; !ok {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	expectedMIME, ok := ExtToMIME[strings.ToLower(filepath.Ext(fileName))]
	if !ok || expectedMIME != lowerMimeType {
		return errs.NewError(errs.ErrFileTypeInvalid)
	}

	return nil
}

// NewAvatarKey returns a fresh object key for an avatar of username.
func NewAvatarKey(username, fileName string) string {
	return avatarKeyPrefix + username + "/" + randx.ID() + strings.ToLower(filepath.Ext(fileName))
}

// OwnsAvatarKey reports whether key was issued to username by NewAvatarKey.
func OwnsAvatarKey(username, key string) bool {
	rest, ok := strings.CutPrefix(key, avatarKeyPrefix+username+"/")
	return ok && rest != "" && !strings.Contains(rest, "/")
}
