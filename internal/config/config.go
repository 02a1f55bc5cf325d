package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"weeklydigest/internal/hackernews"
	"weeklydigest/internal/telegram"
)

const (
	defaultTitle       = "Weekly Roundup "
	defaultMaxItems    = 5
	defaultPerFeed     = 2
	defaultOpenAIModel = "gpt-4o-mini"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	TelegramToken   string
	TelegramChatID  string
	TelegramAPIBase string
	Title           string
	FeedURLs        []string
	ItemsPerFeed    int
	MaxItems        int
	DryRun          bool
	HNBaseURL       string
	OpenAIKey       string
	OpenAIModel     string
	OpenAIBase      string
}

// Load reads environment variables, filling in reasonable defaults.
func Load() Config {
	return Config{
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:  os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramAPIBase: stringWithDefault("TELEGRAM_API_BASE", telegram.DefaultAPIBase),
		Title:           stringWithDefault("CUSTOM_TITLE", defaultTitle),
		FeedURLs:        splitList(os.Getenv("RSS_FEEDS")),
		ItemsPerFeed:    intWithDefault("FEED_ITEMS_PER_FEED", defaultPerFeed),
		MaxItems:        intWithDefault("MAX_ITEMS", defaultMaxItems),
		DryRun:          boolWithDefault("DRY_RUN", false),
		HNBaseURL:       stringWithDefault("HN_API_BASE", hackernews.DefaultBaseURL),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     stringWithDefault("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBase:      os.Getenv("OPENAI_BASE_URL"),
	}
}

// HasFeeds reports whether any syndicated feed is configured.
func (c Config) HasFeeds() bool {
	return len(c.FeedURLs) > 0
}

func stringWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			return parsed
		}
		log.Printf("invalid %s=%s, using default %d", key, v, fallback)
	}
	return fallback
}

func boolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
		log.Printf("invalid %s=%s, using default %t", key, v, fallback)
	}
	return fallback
}

// splitList turns "a, b,,c" into [a b c].
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
