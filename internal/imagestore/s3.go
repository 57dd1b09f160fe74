package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/foodwizard/bot/core/logger"
)

// S3Config points at an S3-compatible bucket. Endpoint and PublicURL
// are separate because object-storage providers often serve uploads
// from a CDN domain that differs from the API endpoint.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" envconfig:"S3_ENDPOINT"`
	Region    string `yaml:"region" envconfig:"S3_REGION"`
	Bucket    string `yaml:"bucket" envconfig:"S3_BUCKET"`
	Prefix    string `yaml:"prefix" envconfig:"S3_PREFIX"`
	PublicURL string `yaml:"public_url" envconfig:"S3_PUBLIC_URL"`
}

type S3 struct {
	client *s3.Client
	cfg    S3Config
}

// NewS3 builds the uploader using the default AWS credential chain, so
// keys come from the environment or the instance profile.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("imagestore: s3 bucket not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("imagestore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, cfg: cfg}, nil
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Upload(ctx context.Context, data []byte, name string) (string, error) {
	started := time.Now()
	key := name
	if s.cfg.Prefix != "" {
		key = strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + name
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("imagestore: s3 put %s: %w", key, err)
	}

	logger.Debug(ctx, "img", "uploaded",
		slog.String("backend", s.Name()),
		slog.String("key", key),
		slog.Int("bytes", len(data)),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(started)).Milliseconds()),
	)
	return s.publicURL(key), nil
}

func (s *S3) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		return strings.TrimSuffix(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
