// Package worldview checks satellite imagery availability through the
// Worldview Snapshots API and produces per-day snapshot URLs.
package worldview

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/terrapulse/agrorisk/internal/domain"
)

const (
	defaultLayers = "MODIS_Terra_CorrectedReflectance_TrueColor"

	// bboxHalfDegrees is half the side of the bounding box drawn around the
	// request coordinate.
	bboxHalfDegrees = 0.25

	snapshotWidth  = 1024
	snapshotHeight = 1024
)

// Client implements domain.ImagerySource against the Snapshots API. One probe
// request per evaluation verifies the service answers; snapshot URLs for the
// remaining days are constructed, not fetched.
type Client struct {
	baseURL    string
	layers     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Worldview snapshots client. baseURL is the snapshot
// endpoint, e.g. https://wvs.earthdata.nasa.gov/api/v1/snapshot.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		layers:  defaultLayers,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchSnapshots probes the service with the range's first day and, on
// success, returns one snapshot URL per day in the range ascending.
func (c *Client) FetchSnapshots(ctx context.Context, coord domain.Coordinate, rng domain.DateRange) ([]domain.ImagerySnapshot, error) {
	probeURL := c.snapshotURL(coord, rng.Start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worldview request: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused; the image body itself is not needed.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worldview API error: status %d", resp.StatusCode)
	}

	snapshots := make([]domain.ImagerySnapshot, 0, rng.Days())
	for d := rng.Start; !d.After(rng.End); d = d.AddDate(0, 0, 1) {
		snapshots = append(snapshots, domain.ImagerySnapshot{
			Date: d,
			URL:  c.snapshotURL(coord, d),
		})
	}
	return snapshots, nil
}

func (c *Client) snapshotURL(coord domain.Coordinate, date time.Time) string {
	bbox := fmt.Sprintf("%.4f,%.4f,%.4f,%.4f",
		coord.Lon-bboxHalfDegrees, coord.Lat-bboxHalfDegrees,
		coord.Lon+bboxHalfDegrees, coord.Lat+bboxHalfDegrees)

	params := url.Values{
		"REQUEST": {"GetSnapshot"},
		"TIME":    {date.Format("2006-01-02")},
		"BBOX":    {bbox},
		"CRS":     {"EPSG:4326"},
		"LAYERS":  {c.layers},
		"WRAP":    {"day"},
		"FORMAT":  {"image/png"},
		"WIDTH":   {fmt.Sprint(snapshotWidth)},
		"HEIGHT":  {fmt.Sprint(snapshotHeight)},
	}
	return c.baseURL + "?" + params.Encode()
}
