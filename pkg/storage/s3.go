// Package storage wraps the S3 bucket that holds user uploads. Clients never
// stream through the service: reads and writes go through presigned URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Payphone-Digital/factbook/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// ObjectAPI is the subset of *s3.Client used here.
type ObjectAPI interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient used here.
type Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type PresignedURL struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

type ObjectStore struct {
	api     ObjectAPI
	presign Presigner
	bucket  string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func New(api ObjectAPI, presign Presigner, bucket string, ttl time.Duration, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{
		api:     api,
		presign: presign,
		bucket:  bucket,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// NewS3Store builds a store from the AWS section of cfg. A non-empty
// endpoint switches to path-style addressing for MinIO or LocalStack.
func NewS3Store(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true
		}
	})

	return New(client, s3.NewPresignClient(client), cfg.AWS.Bucket, cfg.AWS.AvatarURLTTL, logger), nil
}

// Exists reports whether key is present in the bucket.
func (s *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}

	s.logger.Error("Failed to stat object",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Error(err),
	)
	return false, fmt.Errorf("head object %s: %w", key, err)
}

func (s *ObjectStore) PresignGet(ctx context.Context, key string) (*PresignedURL, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get %s: %w", key, err)
	}
	return s.result(req), nil
}

func (s *ObjectStore) PresignPut(ctx context.Context, key, contentType string) (*PresignedURL, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}
	return s.result(req), nil
}

func (s *ObjectStore) result(req *v4.PresignedHTTPRequest) *PresignedURL {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return &PresignedURL{
		URL:       req.URL,
		Method:    method,
		ExpiresAt: s.now().Add(s.ttl),
	}
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}
