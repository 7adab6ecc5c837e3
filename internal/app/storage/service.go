/*
Package storage keeps user avatars in S3-compatible object storage.

The server never streams image bytes itself: clients upload and download
through short-lived presigned URLs, and the server only records object keys.
*/
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned by ObjectInfo when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// ObjectInfo is the subset of object metadata the avatar flow checks.
type ObjectInfo struct {
	ContentType string
	Size        int64
}

// StorageService defines the public interface for the file storage service.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// PresignDownload generates a pre-signed URL for downloading a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error

	// ObjectInfo retrieves the object's metadata.
	ObjectInfo(ctx context.Context, key string) (ObjectInfo, error)
}

// NewStorageService is the factory function for StorageService.
// Only S3-compatible implementations are supported.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	return newS3Client(ctx, cfg)
}
