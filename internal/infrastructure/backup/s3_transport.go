package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	infraconfig "github.com/buildledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3Transport implements Transport
var _ Transport = (*S3Transport)(nil)

// S3Transport uploads snapshots to an S3 bucket. It works against any
// S3-compatible backend (AWS S3, MinIO, RustFS) via a custom endpoint.
type S3Transport struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3TransportOption is a functional option for configuring S3Transport
type S3TransportOption func(*S3Transport)

// WithS3Logger sets a custom logger for S3Transport
func WithS3Logger(logger *zap.Logger) S3TransportOption {
	return func(t *S3Transport) {
		t.logger = logger
	}
}

// NewS3Transport creates an S3Transport from backup configuration
func NewS3Transport(cfg *infraconfig.BackupConfig, opts ...S3TransportOption) (*S3Transport, error) {
	if cfg == nil {
		return nil, errors.New("backup configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("backup bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("backup access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("backup secret key is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid backup endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	transport := &S3Transport{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(transport)
	}
	return transport, nil
}

// Store uploads the snapshot as prefix/name
func (t *S3Transport) Store(ctx context.Context, name string, data []byte) error {
	key := name
	if t.prefix != "" {
		key = path.Join(t.prefix, name)
	}
	_, err := t.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload backup: %w", err)
	}
	t.logger.Info("backup uploaded",
		zap.String("bucket", t.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(data)))
	return nil
}
