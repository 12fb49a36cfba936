package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Messenger sends text back to the chat platform: Reply consumes a
// short-lived reply token, Push addresses a user directly.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, userID, text string) error
}

type Config struct {
	APIURL         string
	ChannelToken   string
	RequestTimeout time.Duration
}

// Client talks to the chat platform's message API with channel token auth.
type Client struct {
	apiURL       string
	channelToken string
	timeout      time.Duration
	logger       *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:       config.APIURL,
		channelToken: config.ChannelToken,
		timeout:      timeout,
		logger:       logger,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	return c.post(ctx, "/message/reply", replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	})
}

func (c *Client) Push(ctx context.Context, userID, text string) error {
	return c.post(ctx, "/message/push", pushRequest{
		To:       userID,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.channelToken)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		c.logger.Error("message API request failed", "error", err, "path", path)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("message API rejected request", "status_code", resp.StatusCode, "path", path)
		return fmt.Errorf("message API returned status %d", resp.StatusCode)
	}

	return nil
}
