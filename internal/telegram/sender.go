package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIBase is the public Bot API root.
	DefaultAPIBase = "https://api.telegram.org"
	// ParseMode is the markup dialect digests are written in.
	ParseMode = "MarkdownV2"

	sendTimeout = 20 * time.Second
)

// ErrMissingCredentials is returned by Send when the bot token or chat id is not configured.
var ErrMissingCredentials = errors.New("missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID")

// APIError is a failed sendMessage call.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram sendMessage failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram sendMessage failed with status %d: %s", e.StatusCode, e.Description)
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// Response is the Bot API envelope returned by sendMessage.
type Response struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// Sender posts messages to a single chat.
type Sender struct {
	apiBase    string
	token      string
	chatID     string
	httpClient *http.Client
	logger     *log.Logger
}

// NewSender builds a Sender. Credentials are checked when sending, not here, so a
// dry run works without them.
func NewSender(apiBase, token, chatID string, logger *log.Logger) *Sender {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Sender{
		apiBase:    strings.TrimRight(apiBase, "/"),
		token:      token,
		chatID:     chatID,
		httpClient: &http.Client{Timeout: sendTimeout},
		logger:     logger,
	}
}

// Send delivers text to the configured chat. There is no retry.
func (s *Sender) Send(ctx context.Context, text string) (Response, error) {
	if s.token == "" || s.chatID == "" {
		return Response{}, ErrMissingCredentials
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             ParseMode,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// the URL embeds the token; keep it out of the error text
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return Response{}, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read sendMessage response: %w", err)
	}

	var out Response
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, &APIError{StatusCode: resp.StatusCode, Description: out.Description}
	}
	if decodeErr != nil {
		return Response{}, fmt.Errorf("decode sendMessage response: %w", decodeErr)
	}
	if !out.OK {
		return out, &APIError{StatusCode: resp.StatusCode, Description: out.Description}
	}

	s.logger.Printf("message %d delivered to chat %s", out.Result.MessageID, s.chatID)
	return out, nil
}
