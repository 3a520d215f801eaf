package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_BlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewFetcher(FetchConfig{}).Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "blocked private IP")
}

func TestFetcher_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"a"}]`))
	}))
	defer srv.Close()

	body, err := NewFetcher(FetchConfig{AllowPrivate: true}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetcher_NoRetryOnNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher(FetchConfig{AllowPrivate: true}).Fetch(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "unexpected status code: 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetcher_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	_, err := NewFetcher(FetchConfig{AllowPrivate: true, MaxBytes: 16}).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, errTooLarge)
}

func TestIsPrivate(t *testing.T) {
	tests := map[string]bool{
		"127.0.0.1":       true,
		"10.1.2.3":        true,
		"172.20.0.1":      true,
		"192.168.1.1":     true,
		"169.254.169.254": true,
		"100.64.0.1":      true,
		"::1":             true,
		"fd00::1":         true,
		"::ffff:10.0.0.1": true,
		"8.8.8.8":         false,
		"2001:4860::8888": false,
	}
	for ip, want := range tests {
		t.Run(ip, func(t *testing.T) {
			assert.Equal(t, want, isPrivate(netip.MustParseAddr(ip)))
		})
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://data.example.at/legal.json"))
	assert.True(t, IsRemote("HTTP://mirror/legal.json"))
	assert.False(t, IsRemote("legal.json"))
}

func TestNewFetcher_ProxyOnlyWithoutGuard(t *testing.T) {
	guarded := NewFetcher(FetchConfig{}).Client.Transport.(*http.Transport)
	assert.Nil(t, guarded.Proxy, "guarded fetcher must dial the target directly")

	open := NewFetcher(FetchConfig{AllowPrivate: true}).Client.Transport.(*http.Transport)
	assert.NotNil(t, open.Proxy)
}
