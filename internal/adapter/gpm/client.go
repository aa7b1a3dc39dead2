// Package gpm fetches daily precipitation estimates from the GPM IMERG
// time-series endpoint and normalizes them into domain records.
package gpm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/terrapulse/agrorisk/internal/domain"
)

// Client implements domain.PrecipitationSource against the IMERG daily
// time-series API. Requests carry an Earthdata bearer token when configured.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a GPM IMERG client. token may be empty for endpoints that
// allow anonymous access.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchDaily returns daily precipitation records ordered by date ascending.
// When the upstream repeats a date the first occurrence wins.
func (c *Client) FetchDaily(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.DailyPrecipitationRecord, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", coord.Lat)},
		"longitude": {fmt.Sprintf("%.4f", coord.Lon)},
		"start":     {rng.Start.Format("20060102")},
		"end":       {rng.End.Format("20060102")},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gpm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("gpm API error: status %d: %s", resp.StatusCode, body)
	}

	var gpmResp response
	if err := json.NewDecoder(resp.Body).Decode(&gpmResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return normalize(gpmResp, rng), nil
}

// normalize parses daily entries, keeping the first occurrence per date and
// dropping entries outside the requested range or with unparseable dates.
func normalize(resp response, rng domain.DateRange) []domain.DailyPrecipitationRecord {
	seen := make(map[time.Time]struct{}, len(resp.Data))
	records := make([]domain.DailyPrecipitationRecord, 0, len(resp.Data))

	for _, entry := range resp.Data {
		date, err := time.ParseInLocation("2006-01-02", entry.Date, time.UTC)
		if err != nil || !rng.Contains(date) {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}
		records = append(records, domain.DailyPrecipitationRecord{
			Date:            date,
			PrecipitationMM: entry.Precipitation,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records
}

// IMERG time-series response types.

type response struct {
	Data []entry `json:"data"`
}

type entry struct {
	Date          string   `json:"date"`
	Precipitation *float64 `json:"precipitation"` // mm/day; null when not retrieved
}
