// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brad-richardson/overturemaps-go/internal/common"
)

func TestRangeReadRejectsFullBodyAtNonzeroOffset(t *testing.T) {
	const fileURL = "https://data.example.com/file.bin"
	body := "0123456789abcdef"

	// this mock answers every GET with 200 and the whole body, ignoring
	// the Range header the way a misconfigured server would
	httpClient, _ := common.NewMockedClient(true, map[string]common.MockResponse{
		fileURL: {Body: body},
	})
	f := &httpRangeFile{
		ctx:    context.Background(),
		client: httpClient,
		url:    fileURL,
		size:   int64(len(body)),
	}

	// at offset zero a 200 body starts with the requested range
	buf := make([]byte, 4)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "0123", string(buf))

	// past offset zero the full body is not the requested bytes; reading
	// it as if it were would silently corrupt the stream
	f.offset = 8
	_, err = f.Read(buf)
	require.ErrorIs(t, err, common.ErrUpstream)
}

func TestRangeReadHonorsPartialContent(t *testing.T) {
	const fileURL = "https://data.example.com/file.bin"
	body := []byte("0123456789abcdef")

	httpClient, transport := common.NewMockedClient(true, nil)
	transport.ServeRangeFile(fileURL, body)

	f, err := newHTTPRangeFile(context.Background(), httpClient, fileURL)
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), f.size)

	_, err = f.Seek(10, io.SeekStart)
	require.NoError(t, err)

	buf := make([]byte, 4)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "abcd", string(buf))
}
