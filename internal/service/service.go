package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"weeklydigest/internal/analysis"
	"weeklydigest/internal/config"
	"weeklydigest/internal/digest"
	"weeklydigest/internal/telegram"
)

// RankedSource returns the top ranked items.
type RankedSource interface {
	Top(ctx context.Context, limit int) digest.Batch
}

// FeedSource returns items from syndicated feeds.
type FeedSource interface {
	Fetch(ctx context.Context, feedURLs []string, perFeed int) digest.Batch
}

// MessageSender delivers a rendered digest.
type MessageSender interface {
	Send(ctx context.Context, text string) (telegram.Response, error)
}

// Service ties together fetching, formatting and delivery of one digest.
type Service struct {
	ranked RankedSource
	feeds  FeedSource
	writer analysis.Writer
	sender MessageSender
	logger *log.Logger
	cfg    config.Config
	out    io.Writer
	now    func() time.Time
}

// NewService creates a Service instance. The preview is written to out.
func NewService(ranked RankedSource, feeds FeedSource, writer analysis.Writer, sender MessageSender, logger *log.Logger, cfg config.Config, out io.Writer) *Service {
	return &Service{
		ranked: ranked,
		feeds:  feeds,
		writer: writer,
		sender: sender,
		logger: logger,
		cfg:    cfg,
		out:    out,
		now:    time.Now,
	}
}

// Run builds the digest, prints the preview and sends it unless this is a dry run.
func (s *Service) Run(ctx context.Context) error {
	msg := s.BuildMessage(ctx)
	fmt.Fprintf(s.out, "\n===== MESSAGE PREVIEW =====\n\n%s\n", msg)

	if s.cfg.DryRun {
		fmt.Fprintln(s.out, "\n(DRY RUN) — not sending to Telegram.")
		return nil
	}

	resp, err := s.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	fmt.Fprintf(s.out, "\nSent: %t\n", resp.OK)
	return nil
}

// BuildMessage collects items from every source and renders the digest text.
func (s *Service) BuildMessage(ctx context.Context) string {
	ranked := s.collect("hacker news", s.ranked.Top(ctx, s.cfg.MaxItems))

	var feedItems []digest.Item
	if s.cfg.HasFeeds() {
		feedItems = s.collect("rss", s.feeds.Fetch(ctx, s.cfg.FeedURLs, s.cfg.ItemsPerFeed))
	}

	items := digest.Aggregate(ranked, feedItems, s.cfg.MaxItems)
	s.logger.Printf("digest has %d items (%d ranked, %d from feeds)", len(items), len(ranked), len(feedItems))

	return digest.Render(digest.Message{
		Title: s.cfg.Title,
		Date:  s.now(),
		Intro: s.intro(ctx, items),
		Items: items,
	})
}

func (s *Service) collect(name string, batch digest.Batch) []digest.Item {
	if !batch.OK() {
		s.logger.Printf("%s fetch failed, continuing without it: %v", name, batch.Err)
		return nil
	}
	return batch.Items
}

func (s *Service) intro(ctx context.Context, items []digest.Item) string {
	if s.writer == nil || !s.writer.Ready() || len(items) == 0 {
		return ""
	}
	intro, err := s.writer.Intro(ctx, items)
	if err != nil {
		s.logger.Printf("intro generation failed, sending without it: %v", err)
		return ""
	}
	return intro
}
