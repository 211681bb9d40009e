package collysrc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/statdocs/harvester/internal/harvest"
)

func TestExtractParsesDocumentLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
		<a class="doc" href="/files/prices.zip">Prices</a>
		<a class="doc" href="/files/rates.csv">Rates</a>
		<a href="/not-matched.pdf">other</a>
		</body></html>`))
	}))
	defer srv.Close()

	src := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second})
	links, err := src.Extract(context.Background(), srv.URL, "a.doc")
	require.NoError(t, err)
	require.Len(t, links, 2)
	require.Equal(t, srv.URL+"/files/prices.zip", links[0].URL)
	require.Equal(t, "Prices", links[0].Filename)
	require.Equal(t, "Rates", links[1].Filename)
}

func TestExtractNon2xxIsFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := New(Config{Timeout: 5 * time.Second})
	_, err := src.Extract(context.Background(), srv.URL, "a.doc")
	require.Error(t, err)
	var fetchErr *harvest.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestExtractUnreachableHost(t *testing.T) {
	t.Parallel()

	src := New(Config{Timeout: 2 * time.Second})
	_, err := src.Extract(context.Background(), "http://127.0.0.1:1/", "a.doc")
	require.Error(t, err)
	var fetchErr *harvest.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
