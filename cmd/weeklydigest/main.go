package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"weeklydigest/internal/analysis"
	"weeklydigest/internal/config"
	"weeklydigest/internal/hackernews"
	"weeklydigest/internal/rss"
	"weeklydigest/internal/service"
	"weeklydigest/internal/telegram"
)

func main() {
	cfg := config.Load()
	runID := uuid.NewString()[:8]
	logger := log.New(os.Stderr, fmt.Sprintf("[weeklydigest %s] ", runID), log.LstdFlags)
	ctx := context.Background()

	if !cfg.DryRun && (cfg.TelegramToken == "" || cfg.TelegramChatID == "") {
		logger.Println("warning: TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID is not set, sending will fail")
	}

	ranked := hackernews.NewClient(cfg.HNBaseURL, logger)
	feeds := rss.NewFetcher(logger)
	writer := analysis.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBase, logger)
	sender := telegram.NewSender(cfg.TelegramAPIBase, cfg.TelegramToken, cfg.TelegramChatID, logger)

	svc := service.NewService(ranked, feeds, writer, sender, logger, cfg, os.Stdout)

	if err := svc.Run(ctx); err != nil {
		logger.Fatalf("digest run failed: %v", err)
	}
}
