package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/david/support-finder/internal/catalog"
	"github.com/david/support-finder/internal/discovery"
	"github.com/david/support-finder/internal/filter"
	"github.com/david/support-finder/internal/ingest"
)

func legalSession(t *testing.T) *discovery.Session {
	t.Helper()
	cfg, err := catalog.LoadConfig("")
	require.NoError(t, err)
	cat, err := loadCatalog(context.Background(), cfg, nil, zaptest.NewLogger(t))
	require.NoError(t, err)
	d, err := cat.Domain("legal")
	require.NoError(t, err)
	return discovery.NewSession(d, nil)
}

func TestLoadCatalog_RemoteDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": "remote-1", "website": "https:\/\/remote.at"}]`))
	}))
	defer srv.Close()

	cfg := &catalog.Config{Domains: []catalog.DomainConfig{{ID: "remote", Dataset: srv.URL + "/remote.json"}}}
	cat, err := loadCatalog(context.Background(), cfg, ingest.NewFetcher(ingest.FetchConfig{AllowPrivate: true}), zaptest.NewLogger(t))
	require.NoError(t, err)

	d, err := cat.Domain("remote")
	require.NoError(t, err)
	require.Len(t, d.Entities, 1)
	assert.Equal(t, "remote-1", d.Entities[0].ID)
	assert.Equal(t, "https://remote.at", d.Entities[0].Contact.Website)
}

func TestAsk(t *testing.T) {
	session := legalSession(t)
	in := bufio.NewScanner(strings.NewReader("1\nx\n9\ns\n1\n"))
	var out bytes.Buffer

	require.NoError(t, ask(session, "en", in, &out))

	assert.True(t, session.Quiz().Completed())
	assert.Equal(t, filter.State{"urgency": "urgent", "location": "Vienna"}, session.Filters())
	assert.Contains(t, out.String(), "How urgent is your matter?")
}

func TestAsk_EOFCloses(t *testing.T) {
	session := legalSession(t)
	var out bytes.Buffer

	require.NoError(t, ask(session, "de", bufio.NewScanner(strings.NewReader("2\n")), &out))
	assert.True(t, session.Quiz().Completed())
	assert.Equal(t, filter.State{"urgency": "non-urgent"}, session.Filters())
}

func TestPrintResults(t *testing.T) {
	session := legalSession(t)
	session.SetFilter(filter.Location, "Graz")
	var out bytes.Buffer

	printResults(session, "en", "", &out)
	assert.Contains(t, out.String(), "arbeiterkammer-graz")
	assert.NotContains(t, out.String(), "familie-linz")
}
