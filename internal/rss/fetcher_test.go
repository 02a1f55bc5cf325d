package rss

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weeklydigest/internal/digest"
)

const rssBody = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Example &amp; Friends</title>
    <link>https://example.com</link>
    <item>
      <title>First &lt;b&gt;post&lt;/b&gt;</title>
      <link>https://example.com/1</link>
    </item>
    <item>
      <title>Second   post</title>
      <link>https://example.com/2</link>
    </item>
    <item>
      <title>Third post</title>
      <link>https://example.com/3</link>
    </item>
  </channel>
</rss>`

const atomNoTitles = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <id>urn:uuid:feed</id>
  <updated>2024-01-01T00:00:00Z</updated>
  <entry>
    <id>urn:uuid:entry-1</id>
    <link href="https://atom.example/entry1"/>
    <updated>2024-01-01T00:00:00Z</updated>
  </entry>
</feed>`

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func serve(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("caps entries per feed and labels them with the feed title", func(t *testing.T) {
		srv := serve(t, map[string]string{"/rss": rssBody})

		batch := NewFetcher(testLogger()).Fetch(context.Background(), []string{srv.URL + "/rss"}, 2)

		require.True(t, batch.OK())
		assert.Equal(t, []digest.Item{
			{Title: "First post", URL: "https://example.com/1", Source: "Example & Friends"},
			{Title: "Second post", URL: "https://example.com/2", Source: "Example & Friends"},
		}, batch.Items)
	})

	t.Run("falls back to the feed address and placeholder title", func(t *testing.T) {
		srv := serve(t, map[string]string{"/atom": atomNoTitles})
		feedURL := srv.URL + "/atom"

		batch := NewFetcher(testLogger()).Fetch(context.Background(), []string{feedURL}, 2)

		require.Len(t, batch.Items, 1)
		assert.Equal(t, digest.Item{Title: digest.NoTitle, URL: "https://atom.example/entry1", Source: feedURL}, batch.Items[0])
	})

	t.Run("a broken feed does not stop the others", func(t *testing.T) {
		srv := serve(t, map[string]string{"/rss": rssBody, "/junk": "this is not a feed"})

		batch := NewFetcher(testLogger()).Fetch(context.Background(),
			[]string{srv.URL + "/down", srv.URL + "/junk", srv.URL + "/rss"}, 1)

		require.True(t, batch.OK())
		require.Len(t, batch.Items, 1)
		assert.Equal(t, "https://example.com/1", batch.Items[0].URL)
	})

	t.Run("no feeds gives an empty batch", func(t *testing.T) {
		batch := NewFetcher(testLogger()).Fetch(context.Background(), nil, 2)
		assert.True(t, batch.OK())
		assert.Empty(t, batch.Items)
	})

	t.Run("without a parser nothing is fetched", func(t *testing.T) {
		srv := serve(t, map[string]string{"/rss": rssBody})

		batch := NewFetcherWithParser(nil, testLogger()).Fetch(context.Background(), []string{srv.URL + "/rss"}, 2)

		assert.True(t, batch.OK())
		assert.Empty(t, batch.Items)
	})
}

type stubParser struct {
	feeds map[string]*gofeed.Feed
	calls []string
}

func (s *stubParser) ParseURLWithContext(feedURL string, _ context.Context) (*gofeed.Feed, error) {
	s.calls = append(s.calls, feedURL)
	feed, ok := s.feeds[feedURL]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return feed, nil
}

func TestFetcher_FetchWithStubParser(t *testing.T) {
	parser := &stubParser{feeds: map[string]*gofeed.Feed{
		"a": {Title: "  ", Items: []*gofeed.Item{{Title: "x", Link: " https://x "}, nil, {Title: "y"}}},
		"c": {Title: "<i>C</i>", Items: []*gofeed.Item{{Title: "z", Link: "https://z"}}},
	}}

	batch := NewFetcherWithParser(parser, testLogger()).Fetch(context.Background(), []string{"a", "b", "c"}, 3)

	assert.Equal(t, []string{"a", "b", "c"}, parser.calls)
	assert.Equal(t, []digest.Item{
		{Title: "x", URL: "https://x", Source: "a"},
		{Title: "y", URL: "", Source: "a"},
		{Title: "z", URL: "https://z", Source: "C"},
	}, batch.Items)
}

func TestPlainText(t *testing.T) {
	f := NewFetcherWithParser(nil, testLogger())

	assert.Equal(t, "", f.plainText(""))
	assert.Equal(t, "Tom & Jerry", f.plainText("Tom &amp; Jerry"))
	assert.Equal(t, "Tom & Jerry", f.plainText("Tom & Jerry"))
	assert.Equal(t, "bold move", f.plainText("<strong>bold</strong>\n  move"))
	assert.Equal(t, `say "hi"`, f.plainText(`say "hi"`))
}
