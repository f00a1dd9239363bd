package media

import (
	"fmt"

	"melodia/internal/config"
)

// NewFromConfig builds the uploader for STORAGE_PROVIDER.
func NewFromConfig(cfg *config.Config) (*Uploader, error) {
	var provider Provider
	switch cfg.StorageProvider {
	case "s3":
		s3p, err := NewS3Provider(S3Config{
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			PublicURL: cfg.StoragePublicURL,
		})
		if err != nil {
			return nil, err
		}
		provider = s3p
	case "", "disk":
		provider = NewDiskProvider(cfg.MediaDir, cfg.StoragePublicURL)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.StorageProvider)
	}
	return NewUploader(provider, cfg.StorageRootFolder), nil
}
