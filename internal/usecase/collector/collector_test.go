package collector_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/collector"
)

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Sample Wire</title>
<item>
  <title>Quake Strikes Near Gaziantep</title>
  <link>HTTPS://Example.com/a?utm_source=rss&amp;id=1</link>
  <guid>guid-1</guid>
  <description><![CDATA[<p>A strong earthquake <img src="https://img.example.com/a.jpg"/> struck overnight.</p>]]></description>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
</channel></rss>`

func TestCollector_Collect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := collector.New(srv.Client())
	src := entity.Source{Name: "Sample Wire", FeedURL: srv.URL, Tier: entity.TierMajor, Active: true}

	entries, err := c.Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "Sample Wire", e.SourceName)
	assert.Equal(t, "Quake Strikes Near Gaziantep", e.Title)
	assert.Equal(t, "https://example.com/a?id=1", e.URL)
	assert.Equal(t, "https://img.example.com/a.jpg", e.ImageURL)
	assert.NotContains(t, e.Summary, "<")
	assert.Equal(t, "A strong earthquake struck overnight.", e.Summary)
}

func TestCollector_Collect_OpenGraphFallback(t *testing.T) {
	const pageHTML = `<html><head><meta property="og:image" content="https://img.example.com/og.jpg"/></head><body></body></html>`

	var mux http.ServeMux
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML))
	})

	srv := httptest.NewServer(&mux)
	defer srv.Close()

	feed := `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Sample Wire</title>
<item>
  <title>Quake Strikes Near Gaziantep</title>
  <link>` + srv.URL + `/article</link>
  <guid>guid-2</guid>
  <description>A strong earthquake struck overnight.</description>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
</channel></rss>`
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	})

	c := collector.New(srv.Client())
	src := entity.Source{Name: "Sample Wire", FeedURL: srv.URL + "/feed", Tier: entity.TierMajor, Active: true}

	entries, err := c.Collect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://img.example.com/og.jpg", entries[0].ImageURL)
}

func TestCollector_Collect_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := collector.New(srv.Client())
	src := entity.Source{Name: "Flaky", FeedURL: srv.URL, Tier: entity.TierStandard, Active: true}

	_, err := c.Collect(context.Background(), src)
	assert.Error(t, err)
}
