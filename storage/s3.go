package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appcfg "github.com/atelierhub/atelier/config"
)

// S3Store implements ObjectStore on an S3 compatible service.
type S3Store struct {
	client        *s3.Client
	region        string
	endpoint      string
	publicBaseURL string
	pathStyle     bool
}

// NewS3Store builds the store from application configuration. A custom
// endpoint (MinIO etc.) forces path-style addressing.
func NewS3Store(cfg appcfg.AppConfig) (*S3Store, error) {
	if cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: access key id and secret are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.S3Endpoint), "/")
	pathStyle := cfg.S3PathStyle
	if endpoint != "" {
		pathStyle = true
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = pathStyle
	})

	return &S3Store{
		client:        client,
		region:        cfg.S3Region,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimSuffix(strings.TrimSpace(cfg.S3PublicBaseURL), "/"),
		pathStyle:     pathStyle,
	}, nil
}

// Upload stores body under bucket/key and returns the public URL.
func (s *S3Store) Upload(ctx context.Context, bucket, key string, body []byte, contentType string) (string, error) {
	key = normalizeKey(key)
	if key == "" {
		return "", fmt.Errorf("invalid object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return s.PublicURL(bucket, key), nil
}

// Delete removes bucket/key. S3 DeleteObject on a missing key succeeds,
// which matches the interface contract.
func (s *S3Store) Delete(ctx context.Context, bucket, key string) error {
	key = normalizeKey(key)
	if key == "" {
		return fmt.Errorf("invalid object key")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the public URL for bucket/key.
func (s *S3Store) PublicURL(bucket, key string) string {
	key = normalizeKey(key)
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + bucket + "/" + key
	}
	if s.endpoint != "" {
		return s.endpoint + "/" + bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, key)
}

// KeyFromURL resolves a public URL back to an object key within bucket.
func (s *S3Store) KeyFromURL(rawURL, bucket string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	// Custom domain / path-style: .../{bucket}/{key}
	for _, base := range []string{s.publicBaseURL, s.endpoint} {
		if base == "" {
			continue
		}
		prefix := base + "/" + bucket + "/"
		if strings.HasPrefix(rawURL, prefix) {
			key := normalizeKey(strings.TrimPrefix(rawURL, prefix))
			return key, key != ""
		}
	}

	// Virtual-hosted style: https://{bucket}.s3.{region}.amazonaws.com/{key}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(parsed.Host, bucket+".s3.") {
		key := normalizeKey(parsed.Path)
		return key, key != ""
	}
	return "", false
}

func normalizeKey(key string) string {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(key, "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	return key
}
