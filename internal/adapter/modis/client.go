// Package modis fetches NDVI subsets from the MODIS web service and
// normalizes them into domain vegetation samples.
package modis

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

const (
	// ndviScale converts raw MOD13 subset values to the unitless index.
	ndviScale = 0.0001

	// fillValue marks a pixel with no valid observation.
	fillValue = -3000
)

// Client implements domain.VegetationSource against the MODIS subset API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a MODIS NDVI client. baseURL is the product subset
// endpoint, e.g. https://modis.ornl.gov/rst/api/v1/MOD13Q1/subset.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchSamples returns NDVI samples in the range, ordered by date ascending,
// first occurrence winning on duplicate dates. Fill values and values outside
// [-1, 1] are dropped at this boundary.
func (c *Client) FetchSamples(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.VegetationSample, error) {
	params := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", coord.Lat)},
		"longitude": {fmt.Sprintf("%.4f", coord.Lon)},
		"startDate": {rng.Start.Format("2006-01-02")},
		"endDate":   {rng.End.Format("2006-01-02")},
		"band":      {"250m_16_days_NDVI"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("modis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("modis API error: status %d: %s", resp.StatusCode, body)
	}

	var modisResp response
	if err := json.NewDecoder(resp.Body).Decode(&modisResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return c.normalize(modisResp, rng), nil
}

func (c *Client) normalize(resp response, rng domain.DateRange) []domain.VegetationSample {
	seen := make(map[time.Time]struct{}, len(resp.Subset))
	samples := make([]domain.VegetationSample, 0, len(resp.Subset))

	for _, cell := range resp.Subset {
		date, err := time.ParseInLocation("2006-01-02", cell.CalendarDate, time.UTC)
		if err != nil || !rng.Contains(date) {
			continue
		}
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		sample := domain.VegetationSample{Date: date}
		if cell.Value != nil && *cell.Value != fillValue {
			ndvi := *cell.Value * ndviScale
			if ndvi < -1 || ndvi > 1 {
				c.logger.Warn("dropping out-of-range NDVI value", "date", cell.CalendarDate, "value", ndvi)
			} else {
				sample.NDVI = &ndvi
			}
		}
		samples = append(samples, sample)
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].Date.Before(samples[j].Date) })
	return samples
}

// MODIS subset response types.

type response struct {
	Subset []subsetCell `json:"subset"`
}

type subsetCell struct {
	CalendarDate string   `json:"calendar_date"`
	Value        *float64 `json:"value"`
}
