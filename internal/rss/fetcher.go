package rss

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"weeklydigest/internal/digest"
)

const feedTimeout = 15 * time.Second

// FeedParser is the parsing capability the fetcher delegates to. *gofeed.Parser satisfies it.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// Fetcher pulls and parses syndicated feeds.
type Fetcher struct {
	parser FeedParser
	policy *bluemonday.Policy
	logger *log.Logger
}

// NewFetcher creates a fetcher backed by gofeed.
func NewFetcher(logger *log.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: feedTimeout}
	return NewFetcherWithParser(parser, logger)
}

// NewFetcherWithParser creates a fetcher around an arbitrary parser.
// A nil parser disables feed fetching: Fetch always returns an empty batch.
func NewFetcherWithParser(parser FeedParser, logger *log.Logger) *Fetcher {
	return &Fetcher{
		parser: parser,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}
}

// Fetch reads every feed and returns up to perFeed entries from each.
// A feed that fails is logged and skipped; the others still contribute.
func (f *Fetcher) Fetch(ctx context.Context, feedURLs []string, perFeed int) digest.Batch {
	if f.parser == nil {
		return digest.Batch{}
	}

	var items []digest.Item
	for _, feedURL := range feedURLs {
		got, err := f.fetchOne(ctx, feedURL, perFeed)
		if err != nil {
			f.logger.Printf("skip feed %s: %v", feedURL, err)
			continue
		}
		items = append(items, got...)
	}
	return digest.Batch{Items: items}
}

func (f *Fetcher) fetchOne(ctx context.Context, feedURL string, perFeed int) ([]digest.Item, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	if feed == nil {
		return nil, nil
	}

	source := f.plainText(feed.Title)
	if source == "" {
		source = feedURL
	}

	entries := feed.Items
	if perFeed >= 0 && len(entries) > perFeed {
		entries = entries[:perFeed]
	}

	items := make([]digest.Item, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		title := f.plainText(entry.Title)
		if title == "" {
			title = digest.NoTitle
		}
		items = append(items, digest.Item{
			Title:  title,
			URL:    strings.TrimSpace(entry.Link),
			Source: source,
		})
	}
	return items, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// plainText strips markup and entities that feeds like to put in titles.
func (f *Fetcher) plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(f.policy.Sanitize(s))
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
