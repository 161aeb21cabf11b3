package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StoredFile describes a file after it has been written to storage
type StoredFile struct {
	// Key is the storage-relative identifier, e.g. "summaries/summary-<uuid>.pdf"
	Key          string
	URL          string
	Size         int64
	ContentType  string
	OriginalName string
}

// FileStorage is implemented by the local disk and S3 backends
type FileStorage interface {
	// Save stores the upload under folder with a collision-free name
	Save(ctx context.Context, fileHeader *multipart.FileHeader, folder, prefix string) (*StoredFile, error)

	// Delete removes the object; deleting a missing object is not an error
	Delete(ctx context.Context, key string) error

	// URL returns the public address of key
	URL(key string) string

	// LocalPath returns the on-disk path when the backend is local
	LocalPath(key string) (string, bool)
}

// NewObjectKey builds "<folder>/<prefix>-<uuid><ext>" from the original filename
func NewObjectKey(folder, prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	if prefix != "" {
		name = prefix + "-" + name
	}
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

// cleanKey rejects keys that would escape the storage root
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(filepath.ToSlash(key), "/")
	if key == "" {
		return "", fmt.Errorf("empty storage key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("invalid storage key: %s", key)
		}
	}
	return key, nil
}
