package rss_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deusflow/thainews/internal/rss"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
	<channel>
		<title>Test Feed</title>
		<item>
			<title>First &amp; foremost</title>
			<link>http://example.com/1</link>
		</item>
		<item>
			<title><![CDATA[<b>Second</b> story]]></title>
			<link> http://example.com/2 </link>
		</item>
		<item>
			<title>Third</title>
			<link>http://example.com/3</link>
		</item>
		<item>
			<title>Hackers abuse &lt;script&gt; tags in bank portal breach</title>
			<link>http://example.com/4</link>
		</item>
		<item>
			<title>Why x &lt;y and y &gt;z broke the model</title>
			<link>http://example.com/5</link>
		</item>
		<item>
			<title>Poll: support at &lt;40%</title>
			<link>http://example.com/6</link>
		</item>
	</channel>
</rss>`

func TestFetchKeepsFeedOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer server.Close()

	entries, err := rss.NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, []rss.Entry{
		{Title: "First & foremost", Link: "http://example.com/1"},
		{Title: "<b>Second</b> story", Link: "http://example.com/2"},
		{Title: "Third", Link: "http://example.com/3"},
		{Title: "Hackers abuse <script> tags in bank portal breach", Link: "http://example.com/4"},
		{Title: "Why x <y and y >z broke the model", Link: "http://example.com/5"},
		{Title: "Poll: support at <40%", Link: "http://example.com/6"},
	}, entries)
}

func TestFetchDiscoversFeedFromPage(t *testing.T) {
	var agent string
	mux := http.NewServeMux()
	mux.HandleFunc("/hub", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Top news</title>
			<link rel="alternate" type="application/rss+xml" href="/hub/rss.xml">
			</head><body><h1>Top news</h1></body></html>`))
	})
	mux.HandleFunc("/hub/rss.xml", func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		w.Write([]byte(testFeed))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	entries, err := rss.NewFetcher(time.Second).Fetch(context.Background(), server.URL+"/hub")
	require.NoError(t, err)
	require.Len(t, entries, 6)
	require.Equal(t, "http://example.com/1", entries[0].Link)
	require.Equal(t, "thainews/1.0", agent)
}

func TestFetchPageWithoutFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><link rel="stylesheet" href="/a.css"></head><body>hi</body></html>`))
	}))
	defer server.Close()

	_, err := rss.NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := rss.NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestFetchNotAFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not xml"))
	}))
	defer server.Close()

	_, err := rss.NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := rss.NewFetcher(50*time.Millisecond).Fetch(context.Background(), server.URL)
	require.Error(t, err)
}
