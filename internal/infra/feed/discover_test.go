package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"my-ankode/internal/infra/feed"
	"my-ankode/internal/resilience/retry"
	"my-ankode/internal/usecase/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogPage = `<!doctype html>
<html><head>
  <title>Blog</title>
  <link rel="stylesheet" href="/style.css">
  <link rel="alternate" type="application/rss+xml" title="RSS" href="/feed.xml">
  <link rel="alternate" type="application/atom+xml" title="Atom" href="https://cdn.example/atom.xml">
  <link rel="alternate" type="application/rss+xml" title="Duplicate" href="/feed.xml">
  <link rel="alternate" type="text/html" hreflang="fr" href="/fr/">
  <link rel="Alternate Feed" type="application/feed+json" href="feed.json">
</head><body></body></html>`

func TestDiscoverer_Discover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(blogPage))
	}))
	defer server.Close()

	links, err := feed.NewDiscoverer(testConfig(), nil).Discover(context.Background(), server.URL+"/blog/")

	require.NoError(t, err)
	assert.Equal(t, []source.FeedLink{
		{Title: "RSS", URL: server.URL + "/feed.xml", Type: "application/rss+xml"},
		{Title: "Atom", URL: "https://cdn.example/atom.xml", Type: "application/atom+xml"},
		{Title: "", URL: server.URL + "/blog/feed.json", Type: "application/feed+json"},
	}, links)
}

func TestDiscoverer_Discover_NoFeeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain</title></head></html>`))
	}))
	defer server.Close()

	links, err := feed.NewDiscoverer(testConfig(), nil).Discover(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestDiscoverer_Discover_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := feed.NewDiscoverer(testConfig(), nil).Discover(context.Background(), server.URL)

	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}
