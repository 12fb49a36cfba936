package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// SourceEntry is one calendar day as published by the external holiday
// source. Dates arrive either as 2006-01-02 or compact 20060102.
type SourceEntry struct {
	Date      string `json:"date"`
	Name      string `json:"description"`
	IsHoliday bool   `json:"isHoliday"`
}

// NormalizedDate returns the entry date as ISO 2006-01-02, or false when
// the raw value parses as neither supported layout.
func (e SourceEntry) NormalizedDate() (string, bool) {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if d, err := time.Parse(layout, e.Date); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

// Source fetches the official holiday calendar for one year.
type Source interface {
	FetchYear(ctx context.Context, year int) ([]SourceEntry, error)
}

// HTTPSource reads year files from a public holiday dataset, e.g.
// https://host/path/2025.json.
type HTTPSource struct {
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

func NewHTTPSource(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *HTTPSource) FetchYear(ctx context.Context, year int) ([]SourceEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%d.json", s.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday source request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday source returned status %d", resp.StatusCode)
	}

	var entries []SourceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode holiday data: %w", err)
	}

	s.logger.Debug("fetched holiday year", "year", year, "entries", len(entries))

	return entries, nil
}
