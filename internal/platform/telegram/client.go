package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

// APIError is returned when Telegram answers with a non-2xx status or ok=false.
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram API error: status %d: %s", e.StatusCode, e.Description)
}

// Client sends Bot API requests. The bot token is supplied per call because
// captured addresses are delivered through a different bot than the default.
type Client struct {
	httpClient *http.Client
	baseURL    string
	parseMode  string
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithParseMode(mode string) Option {
	return func(c *Client) { c.parseMode = mode }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultAPIURL,
		parseMode:  "HTML",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type response struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage posts text to chatID through the bot identified by token.
func (c *Client) SendMessage(ctx context.Context, token, chatID, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: c.parseMode,
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the endpoint, which carries the bot token.
		return fmt.Errorf("sendMessage: %s", redact(err.Error(), token))
	}
	defer resp.Body.Close()

	var result response
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !result.Ok {
		return &APIError{StatusCode: resp.StatusCode, Description: result.Description}
	}
	return nil
}

func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, token, "<token>")
}
