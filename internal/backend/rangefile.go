// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hangxie/parquet-go/v2/source"
	"github.com/minio/minio-go/v7"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/objects"
)

// httpRangeFile exposes a remote file over HTTP Range requests as a
// seekable parquet source, so the reader only transfers the footer and the
// row groups it actually visits.
type httpRangeFile struct {
	ctx    context.Context
	client *http.Client
	url    string
	size   int64
	offset int64
}

var _ source.ParquetFileReader = (*httpRangeFile)(nil)

func newHTTPRangeFile(ctx context.Context, client *http.Client, url string) (*httpRangeFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", common.UserAgent)
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sizing %s: %v", common.ErrUpstream, url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", common.ErrUpstream, url, resp.StatusCode)
	}
	if resp.ContentLength < 0 {
		return nil, fmt.Errorf("%w: %s did not report a content length", common.ErrUpstream, url)
	}
	return &httpRangeFile{ctx: ctx, client: client, url: url, size: resp.ContentLength}, nil
}

func (f *httpRangeFile) Read(p []byte) (int, error) {
	if f.offset >= f.size {
		return 0, io.EOF
	}
	end := f.offset + int64(len(p)) - 1
	if end >= f.size {
		end = f.size - 1
	}

	req, err := http.NewRequestWithContext(f.ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", common.UserAgent)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", f.offset, end))

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: range read of %s: %v", common.ErrUpstream, f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	// a 200 at offset zero is the whole file, which starts with the range
	// we asked for; a 200 at any other offset means the server ignored the
	// Range header and the body is not the requested bytes
	if resp.StatusCode != http.StatusPartialContent &&
		!(resp.StatusCode == http.StatusOK && f.offset == 0) {
		return 0, fmt.Errorf("%w: range read of %s returned status %d", common.ErrUpstream, f.url, resp.StatusCode)
	}

	n, err := io.ReadFull(resp.Body, p[:end-f.offset+1])
	f.offset += int64(n)
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return n, err
}

func (f *httpRangeFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.offset = offset
	case io.SeekCurrent:
		f.offset += offset
	case io.SeekEnd:
		f.offset = f.size + offset
	default:
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	if f.offset < 0 {
		return 0, fmt.Errorf("negative seek offset for %s", f.url)
	}
	return f.offset, nil
}

func (f *httpRangeFile) Close() error { return nil }

func (f *httpRangeFile) Open(name string) (source.ParquetFileReader, error) {
	if name == "" {
		name = f.url
	}
	return newHTTPRangeFile(f.ctx, f.client, name)
}

func (f *httpRangeFile) Clone() (source.ParquetFileReader, error) {
	// clones share the known size but keep independent cursors, which is
	// what the reader's parallel column reads need
	return &httpRangeFile{ctx: f.ctx, client: f.client, url: f.url, size: f.size}, nil
}

// s3ObjectFile adapts a minio object to a parquet source. minio objects
// are lazily ranged, so seeking is cheap and reads only fetch what the
// reader touches.
type s3ObjectFile struct {
	ctx    context.Context
	client *objects.MinioClientWrapper
	bucket string
	key    string
	obj    *minio.Object
}

var _ source.ParquetFileReader = (*s3ObjectFile)(nil)

func newS3ObjectFile(ctx context.Context, client *objects.MinioClientWrapper, bucket, key string) (*s3ObjectFile, error) {
	obj, err := client.Open(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return &s3ObjectFile{ctx: ctx, client: client, bucket: bucket, key: key, obj: obj}, nil
}

func (f *s3ObjectFile) Read(p []byte) (int, error)                 { return f.obj.Read(p) }
func (f *s3ObjectFile) Seek(o int64, w int) (int64, error)         { return f.obj.Seek(o, w) }
func (f *s3ObjectFile) Close() error                               { return f.obj.Close() }
func (f *s3ObjectFile) Clone() (source.ParquetFileReader, error)   { return f.Open("") }
func (f *s3ObjectFile) Open(string) (source.ParquetFileReader, error) {
	return newS3ObjectFile(f.ctx, f.client, f.bucket, f.key)
}
