package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	"melodia/internal/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Config configures an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	// PublicURL replaces the upload location as URL prefix when set (CDN).
	PublicURL string
}

// S3Provider uploads public-read objects with the s3manager uploader.
type S3Provider struct {
	bucket    string
	publicURL string
	uploader  s3manageriface.UploaderAPI
}

// NewS3Provider builds a session from cfg. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewS3ProviderWithUploader(cfg.Bucket, cfg.PublicURL, s3manager.NewUploaderWithClient(s3.New(sess))), nil
}

// NewS3ProviderWithUploader wires an existing uploader.
func NewS3ProviderWithUploader(bucket, publicURL string, uploader s3manageriface.UploaderAPI) *S3Provider {
	return &S3Provider{bucket: bucket, publicURL: publicURL, uploader: uploader}
}

func (p *S3Provider) Name() string { return "s3" }

func (p *S3Provider) Put(ctx context.Context, obj Object) (string, error) {
	f, err := os.Open(obj.LocalPath)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	defer f.Close()

	out, err := p.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(obj.Key),
		Body:        f,
		ContentType: aws.String(obj.ContentType),
		ACL:         aws.String(s3.ObjectCannedACLPublicRead),
	})
	if err != nil {
		return "", upstreamError(err)
	}

	if p.publicURL != "" {
		return p.publicURL + "/" + obj.Key, nil
	}
	return out.Location, nil
}

// upstreamError keeps the provider's message and HTTP status.
func upstreamError(err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return models.NewUpstreamError(reqErr.Message(), reqErr.StatusCode(), err)
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return models.NewUpstreamError(awsErr.Message(), 0, err)
	}
	return models.NewUpstreamError("Upload to s3 failed", 0, err)
}
