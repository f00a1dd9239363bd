package media

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"melodia/internal/models"
)

// DiskProvider copies objects below a local directory that is served
// statically under publicURL.
type DiskProvider struct {
	dir       string
	publicURL string
}

// NewDiskProvider returns a provider writing into dir.
func NewDiskProvider(dir, publicURL string) *DiskProvider {
	return &DiskProvider{dir: dir, publicURL: publicURL}
}

func (p *DiskProvider) Name() string { return "disk" }

// Dir is the directory files are written to.
func (p *DiskProvider) Dir() string { return p.dir }

func (p *DiskProvider) Put(ctx context.Context, obj Object) (string, error) {
	dst := filepath.Join(p.dir, filepath.FromSlash(obj.Key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", models.NewUpstreamError("Could not prepare media directory", 0, err)
	}

	src, err := os.Open(obj.LocalPath)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", models.NewUpstreamError("Could not store media file", 0, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", models.NewUpstreamError("Could not store media file", 0, err)
	}
	if err := out.Close(); err != nil {
		return "", models.NewUpstreamError("Could not store media file", 0, err)
	}

	return p.publicURL + "/" + obj.Key, nil
}
