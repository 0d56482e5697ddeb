// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package objects wraps a minio client for reading public release data
// addressed with s3:// URLs.
package objects

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
)

// Wrapper to allow us to extend the minio client struct with new methods
type MinioClientWrapper struct {
	Client *minio.Client
}

// NewAnonymousClient builds a client for the public Overture buckets.
// The data needs no credentials, so requests are unsigned.
func NewAnonymousClient(cfg config.S3Config) (*MinioClientWrapper, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("", "", ""),
		Secure: cfg.SSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating s3 client for %s: %v", common.ErrUpstream, cfg.Endpoint, err)
	}
	return &MinioClientWrapper{Client: mc}, nil
}

// Open returns a seekable handle on an object. minio objects implement
// io.ReaderAt and io.Seeker, so partial reads only fetch the ranges a
// reader actually touches.
func (m *MinioClientWrapper) Open(ctx context.Context, bucket, key string) (*minio.Object, error) {
	obj, err := m.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: opening s3://%s/%s: %v", common.ErrUpstream, bucket, key, err)
	}
	return obj, nil
}

// Size stats an object without reading it.
func (m *MinioClientWrapper) Size(ctx context.Context, bucket, key string) (int64, error) {
	info, err := m.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: stat s3://%s/%s: %v", common.ErrUpstream, bucket, key, err)
	}
	return info.Size, nil
}
