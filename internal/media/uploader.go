// Package media moves uploaded files from local temp storage to the configured
// object store and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"melodia/internal/middleware"
	"melodia/internal/models"
	"melodia/internal/observability"

	"github.com/google/uuid"
)

// Storage folders, relative to the configured root folder.
const (
	FolderUsers      = "users"
	FolderArtists    = "artists"
	FolderAlbums     = "albums"
	FolderPlaylists  = "playlists"
	FolderSongCovers = "songs/covers"
	FolderSongAudio  = "songs/audio"
)

// Object is a file ready to be written to a provider.
type Object struct {
	LocalPath   string
	Key         string
	ContentType string
}

// Provider stores objects and returns their public URL.
type Provider interface {
	Name() string
	Put(ctx context.Context, obj Object) (string, error)
}

// Uploader forwards local temp files to a Provider.
type Uploader struct {
	provider Provider
	root     string
}

// NewUploader returns an Uploader writing under root (e.g. "melodia").
func NewUploader(provider Provider, root string) *Uploader {
	return &Uploader{provider: provider, root: strings.Trim(root, "/")}
}

// Provider returns the configured storage provider.
func (u *Uploader) Provider() Provider {
	return u.provider
}

// Upload sends localPath to the provider under folder and returns the public
// URL. The local file is removed whether or not the upload succeeds.
func (u *Uploader) Upload(ctx context.Context, localPath, folder string) (url string, err error) {
	defer func() {
		if rmErr := os.Remove(localPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			middleware.Logger.WarnContext(ctx, "failed to remove temp upload",
				"path", localPath, "error", rmErr.Error())
		}
	}()

	if u == nil || u.provider == nil {
		return "", models.NewInternalError(errors.New("media storage is not configured"))
	}

	start := time.Now()
	ctx, span := observability.GetTraceLayer().TraceStorageUpload(ctx, u.provider.Name(), folder)
	defer span.End()
	defer func() {
		observability.RecordUpload(u.provider.Name(), folder, start, err)
		if err != nil {
			observability.RecordErrorInContext(ctx, err)
		}
	}()

	contentType, err := ContentTypeOf(localPath)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	obj := Object{
		LocalPath:   localPath,
		Key:         u.objectKey(folder, filepath.Ext(localPath)),
		ContentType: contentType,
	}
	url, err = u.provider.Put(ctx, obj)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", models.NewUpstreamError(fmt.Sprintf("Upload to %s failed", u.provider.Name()), 0, err)
	}

	middleware.Logger.InfoContext(ctx, "media uploaded",
		"provider", u.provider.Name(), "folder", folder, "key", obj.Key)
	return url, nil
}

func (u *Uploader) objectKey(folder, ext string) string {
	return path.Join(u.root, folder, uuid.NewString()+strings.ToLower(ext))
}
