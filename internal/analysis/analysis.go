package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"weeklydigest/internal/digest"
)

const maxIntroRunes = 280

// Writer produces the optional one-line intro for a digest.
type Writer interface {
	Intro(ctx context.Context, items []digest.Item) (string, error)
	Ready() bool
}

var errDisabled = errors.New("openai client disabled: missing OPENAI_API_KEY")

// Client implements Writer using the OpenAI chat completion API.
type Client struct {
	client    *openai.Client
	model     string
	logger    *log.Logger
	activated bool
}

// NewClient builds a new Writer. If apiKey is empty, calls will be no-op with errors.
func NewClient(apiKey, model, baseURL string, logger *log.Logger) *Client {
	var cli *openai.Client
	activated := apiKey != ""
	if activated {
		cfg := openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		cli = openai.NewClientWithConfig(cfg)
	}
	return &Client{
		client:    cli,
		model:     model,
		logger:    logger,
		activated: activated,
	}
}

// Ready indicates whether the writer is usable.
func (c *Client) Ready() bool {
	return c.activated && c.client != nil
}

// Intro asks the model for a single plain sentence introducing this week's items.
func (c *Client) Intro(ctx context.Context, items []digest.Item) (string, error) {
	if !c.Ready() {
		return "", errDisabled
	}
	if len(items) == 0 {
		return "", nil
	}

	systemPrompt := "You write the opening line of a weekly tech news digest posted to a group chat.\n" +
		"Reply with one short, plain sentence (no markdown, no emoji, no quotes) that captures the common thread of the listed stories.\n" +
		"Do not list the stories and do not invent facts that are not in the titles."

	var b strings.Builder
	for i, it := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, it.Title, it.Source)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		Temperature: 0.4,
		MaxTokens:   120,
	})
	if err != nil {
		return "", fmt.Errorf("create intro: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned by OpenAI")
	}

	intro := cleanupResponse(resp.Choices[0].Message.Content)
	if intro == "" {
		c.logger.Printf("OpenAI returned an empty intro")
	}
	return trimText(intro, maxIntroRunes), nil
}

func trimText(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// cleanupResponse removes code fences, wrapping quotes and line breaks the model sometimes adds.
func cleanupResponse(s string) string {
	c := strings.TrimSpace(s)
	if strings.HasPrefix(c, "```") {
		if idx := strings.Index(c, "\n"); idx != -1 {
			c = c[idx+1:]
		}
		c = strings.TrimSuffix(c, "```")
		c = strings.TrimSpace(c)
	}
	c = strings.Trim(c, "\"'“”")
	return strings.Join(strings.Fields(c), " ")
}
