// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchBytes(t *testing.T) {
	client, transport := NewMockedClient(true, map[string]MockResponse{
		"https://example.com/doc.json": {Body: `{"ok": true}`, ContentType: "application/json"},
	})

	body, err := FetchBytes(context.Background(), client, "https://example.com/doc.json")
	require.NoError(t, err)
	require.Equal(t, `{"ok": true}`, string(body))
	require.Equal(t, 1, transport.RequestCount())
	require.Equal(t, []string{"https://example.com/doc.json"}, transport.SeenURLs())
}

func TestFetchBytesNonOKStatus(t *testing.T) {
	client, _ := NewMockedClient(true, map[string]MockResponse{
		"https://example.com/gone": {Body: "gone", StatusCode: 404},
	})

	_, err := FetchBytes(context.Background(), client, "https://example.com/gone")
	require.ErrorIs(t, err, ErrUpstream)
}

func TestFetchBytesTransportFailure(t *testing.T) {
	client, _ := NewMockedClient(true, map[string]MockResponse{
		"https://example.com/slow": {Timeout: true},
	})

	_, err := FetchBytes(context.Background(), client, "https://example.com/slow")
	require.ErrorIs(t, err, ErrUpstream)

	// unmocked URLs fail too in strict mode
	_, err = FetchBytes(context.Background(), client, "https://example.com/other")
	require.ErrorIs(t, err, ErrUpstream)
}
