// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package spatial

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/brad-richardson/overturemaps-go/internal/config"
)

// ResolveAsset picks the preferred location for an index entry: a direct
// https URL when present, otherwise the canonical s3:// URL translated to
// its virtual-hosted https form.
func ResolveAsset(assets map[string]string, s3cfg config.S3Config) (string, bool) {
	if u, ok := assets["https"]; ok && u != "" {
		return u, true
	}
	if u, ok := assets["s3"]; ok && u != "" {
		if translated, err := TranslateS3URL(u, s3cfg); err == nil {
			return translated, true
		}
	}
	return "", false
}

// TranslateS3URL rewrites s3://bucket/key into the bucket's
// virtual-hosted https endpoint.
func TranslateS3URL(s3url string, s3cfg config.S3Config) (string, error) {
	parsed, err := url.Parse(s3url)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "s3" || parsed.Host == "" {
		return "", fmt.Errorf("not an s3 url: %s", s3url)
	}
	scheme := "https"
	if !s3cfg.SSL {
		scheme = "http"
	}
	key := strings.TrimPrefix(parsed.Path, "/")
	return fmt.Sprintf("%s://%s.%s/%s", scheme, parsed.Host, s3cfg.Endpoint, key), nil
}

// SplitS3URL breaks s3://bucket/key into its bucket and key parts for
// object store reads.
func SplitS3URL(s3url string) (bucket, key string, err error) {
	parsed, err := url.Parse(s3url)
	if err != nil {
		return "", "", err
	}
	if parsed.Scheme != "s3" || parsed.Host == "" {
		return "", "", fmt.Errorf("not an s3 url: %s", s3url)
	}
	return parsed.Host, strings.TrimPrefix(parsed.Path, "/"), nil
}
