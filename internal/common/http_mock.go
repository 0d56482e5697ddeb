// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package common

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// MockResponse describes the canned response for one URL.
type MockResponse struct {
	Body        string
	StatusCode  int
	ContentType string
	// If true, the request will return an error
	// signifying that the request timed out
	Timeout bool
}

// MockTransport is an http.RoundTripper keyed by URL, used in tests so no
// real network traffic happens. It counts every request it sees, which lets
// tests assert that validation failures never touch the network.
type MockTransport struct {
	// Deny requests that are not mocked
	denyReqNotMocked bool
	urlToResponse    map[string]MockResponse
	requestCount     atomic.Int64

	mu          sync.Mutex
	seenURLs    []string
	rangeBodies map[string][]byte
}

// NewMockedClient returns an http client with mocked responses.
// If strictMode is true, all http requests that are not mocked will return an error.
func NewMockedClient(strictMode bool, urlToResponse map[string]MockResponse) (*http.Client, *MockTransport) {
	transport := &MockTransport{
		denyReqNotMocked: strictMode,
		urlToResponse:    urlToResponse,
		rangeBodies:      map[string][]byte{},
	}
	return &http.Client{Transport: transport}, transport
}

// ServeRangeFile registers raw bytes for a URL and answers Range requests
// against them, mimicking an object store that supports partial reads.
func (m *MockTransport) ServeRangeFile(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rangeBodies[url] = body
}

// RequestCount reports how many requests reached the transport.
func (m *MockTransport) RequestCount() int {
	return int(m.requestCount.Load())
}

// SeenURLs returns every URL requested so far, in order.
func (m *MockTransport) SeenURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.seenURLs...)
}

func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	fullURL := req.URL.String()
	m.requestCount.Add(1)
	m.mu.Lock()
	m.seenURLs = append(m.seenURLs, fullURL)
	rangeBody, hasRangeBody := m.rangeBodies[fullURL]
	m.mu.Unlock()

	if hasRangeBody {
		return m.serveRange(req, rangeBody)
	}

	if mock, ok := m.urlToResponse[fullURL]; ok {
		if mock.Timeout {
			return nil, fmt.Errorf("mocked a timeout for %s", fullURL)
		}
		status := mock.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(mock.Body)),
			Header: http.Header{
				"Content-Type": []string{mock.ContentType},
			},
		}, nil
	}

	if m.denyReqNotMocked {
		return nil, fmt.Errorf("request not mocked: %s", fullURL)
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not mocked")),
	}, nil
}

func (m *MockTransport) serveRange(req *http.Request, body []byte) (*http.Response, error) {
	if req.Method == http.MethodHead {
		return &http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: int64(len(body)),
			Body:          io.NopCloser(strings.NewReader("")),
			Header: http.Header{
				"Content-Length": []string{fmt.Sprintf("%d", len(body))},
				"Accept-Ranges":  []string{"bytes"},
			},
		}, nil
	}

	rangeHeader := req.Header.Get("Range")
	if rangeHeader == "" {
		return &http.Response{
			StatusCode:    http.StatusOK,
			ContentLength: int64(len(body)),
			Body:          io.NopCloser(strings.NewReader(string(body))),
			Header:        http.Header{},
		}, nil
	}

	var start, end int64
	if _, err := fmt.Sscanf(rangeHeader, "bytes=%d-%d", &start, &end); err != nil {
		return nil, fmt.Errorf("unsupported range %q for %s", rangeHeader, req.URL)
	}
	if start < 0 || start >= int64(len(body)) {
		return &http.Response{
			StatusCode: http.StatusRequestedRangeNotSatisfiable,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}, nil
	}
	if end >= int64(len(body)) {
		end = int64(len(body)) - 1
	}
	chunk := body[start : end+1]
	return &http.Response{
		StatusCode:    http.StatusPartialContent,
		ContentLength: int64(len(chunk)),
		Body:          io.NopCloser(strings.NewReader(string(chunk))),
		Header: http.Header{
			"Content-Range": []string{fmt.Sprintf("bytes %d-%d/%d", start, end, len(body))},
		},
	}, nil
}
