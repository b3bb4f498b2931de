package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tripgram/server/internal/agent/model"
	"github.com/tripgram/server/internal/media"
	logx "github.com/tripgram/server/pkg/logger"
)

// ObjectStore talks to the S3-compatible media store (MinIO in every
// deployment so far). The orchestrator only consumes the URL rewriter; the
// upload/delete surface exists for the media pipeline that shares this
// client.
type ObjectStore struct {
	client         *s3.Client
	bucket         string
	endpoint       string
	publicEndpoint string
}

func NewObjectStore(ctx context.Context, cfg model.ObjectStoreConfig) (*ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &ObjectStore{
		client:         client,
		bucket:         cfg.Bucket,
		endpoint:       strings.TrimRight(cfg.Endpoint, "/"),
		publicEndpoint: strings.TrimRight(cfg.PublicEndpoint, "/"),
	}, nil
}

// Upload stores data under key and returns its URL.
func (o *ObjectStore) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("object upload failed")
		return "", fmt.Errorf("upload object %q: %w", key, err)
	}
	return o.GetURL(key), nil
}

// GetURL returns the internal URL for a stored key.
func (o *ObjectStore) GetURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", o.endpoint, o.bucket, key)
}

// Delete removes a stored object.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// Exists reports whether a key is present in the bucket.
func (o *ObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object %q: %w", key, err)
	}
	return true, nil
}

// Rewriter maps this store's internal host:port onto the public endpoint.
func (o *ObjectStore) Rewriter() media.URLRewriter {
	return NewURLRewriter(o.endpoint, o.publicEndpoint)
}

// NewURLRewriter builds a rewriter from two endpoint URLs, comparing only
// host:port so the scheme does not matter.
func NewURLRewriter(internalEndpoint, publicEndpoint string) media.URLRewriter {
	return media.URLRewriter{
		InternalHost: hostPort(internalEndpoint),
		PublicHost:   hostPort(publicEndpoint),
	}
}

func hostPort(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
	}
	return u.Host
}
