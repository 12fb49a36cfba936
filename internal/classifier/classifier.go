package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
)

// Intent kinds form a closed set; the router switches on Kind and never
// inspects raw model output.
const (
	KindLeaveRequest = "leave_request"
	KindClockAction  = "clock_action"
	KindOffSiteVisit = "off_site_visit"
	KindSalaryQuery  = "salary_query"
	KindAddBonus     = "add_bonus"
	KindOther        = "other"
	KindClarify      = "clarify"
)

// Intent is the structured reading of one free-text message.
type Intent struct {
	Kind          string   `json:"kind"`
	LeaveType     string   `json:"leave_type,omitempty"`
	Dates         []string `json:"dates,omitempty"`
	Description   string   `json:"description,omitempty"`
	Clarification string   `json:"clarification,omitempty"`
}

// Classifier turns a message into an Intent.
type Classifier interface {
	Classify(ctx context.Context, text string) Intent
}

type Config struct {
	APIURL         string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// Client calls a generative-AI endpoint that returns the intent as JSON.
// Classification is advisory: any failure degrades to the Other intent and
// the message goes unanswered rather than bouncing the webhook.
type Client struct {
	apiURL  string
	apiKey  string
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiURL:  config.APIURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		timeout: timeout,
		logger:  logger,
	}
}

type classifyRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

func (c *Client) Classify(ctx context.Context, text string) Intent {
	intent, err := c.classify(ctx, text)
	if err != nil {
		c.logger.Warn("intent classification failed, treating as other", "error", err)
		return Intent{Kind: KindOther}
	}
	return intent
}

func (c *Client) classify(ctx context.Context, text string) (Intent, error) {
	jsonData, err := json.Marshal(classifyRequest{Model: c.model, Text: text})
	if err != nil {
		return Intent{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return Intent{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return Intent{}, internal.NewExternalError("classifier request failed", internal.ErrCodeClassifierFailed).WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Intent{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return Intent{}, err
	}

	switch intent.Kind {
	case KindLeaveRequest, KindClockAction, KindOffSiteVisit, KindSalaryQuery, KindAddBonus, KindOther, KindClarify:
		return intent, nil
	default:
		return Intent{}, fmt.Errorf("classifier returned unknown kind %q", intent.Kind)
	}
}
