// Package power fetches daily surface weather from the NASA POWER temporal
// point API and normalizes it into domain records at this boundary.
package power

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

// missingSentinel is POWER's encoding for a missing daily value.
const missingSentinel = -999

// Client implements domain.WeatherSource against the POWER API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a POWER client. baseURL is the daily point endpoint,
// e.g. https://power.larc.nasa.gov/api/temporal/daily/point.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchDaily returns one record per calendar day in the range, ordered by
// date ascending. Missing upstream values become nil fields, never zeros.
func (c *Client) FetchDaily(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.DailyWeatherRecord, error) {
	params := url.Values{
		"parameters": {"T2M,PRECTOTCORR"},
		"community":  {"AG"},
		"latitude":   {fmt.Sprintf("%.4f", coord.Lat)},
		"longitude":  {fmt.Sprintf("%.4f", coord.Lon)},
		"start":      {rng.Start.Format("20060102")},
		"end":        {rng.End.Format("20060102")},
		"format":     {"JSON"},
	}

	c.logger.Debug("power fetch", "lat", coord.Lat, "lon", coord.Lon, "range", rng.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("power request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("power API error: status %d: %s", resp.StatusCode, body)
	}

	var powerResp response
	if err := json.NewDecoder(resp.Body).Decode(&powerResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return normalize(powerResp, rng), nil
}

// normalize flattens POWER's per-parameter date maps into daily records,
// dropping dates outside the requested range and translating the missing
// sentinel to absence. Map keys are unique, so duplicates cannot occur here.
func normalize(resp response, rng domain.DateRange) []domain.DailyWeatherRecord {
	temps := resp.Properties.Parameter["T2M"]
	precips := resp.Properties.Parameter["PRECTOTCORR"]

	dates := make(map[string]struct{}, len(temps))
	for d := range temps {
		dates[d] = struct{}{}
	}
	for d := range precips {
		dates[d] = struct{}{}
	}

	records := make([]domain.DailyWeatherRecord, 0, len(dates))
	for raw := range dates {
		date, err := time.ParseInLocation("20060102", raw, time.UTC)
		if err != nil || !rng.Contains(date) {
			continue
		}
		rec := domain.DailyWeatherRecord{Date: date}
		if v, ok := temps[raw]; ok && v != missingSentinel {
			rec.TemperatureC = &v
		}
		if v, ok := precips[raw]; ok && v != missingSentinel {
			rec.PrecipitationMM = &v
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records
}

// POWER API response types.

type response struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Parameter map[string]map[string]float64 `json:"parameter"`
}
