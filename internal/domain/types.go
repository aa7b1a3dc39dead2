package domain

import (
	"fmt"
	"time"
)

// Source names used as SourceAvailability keys and metric labels.
const (
	SourceWeather       = "weather"
	SourcePrecipitation = "precipitation"
	SourceVegetation    = "vegetation"
	SourceImagery       = "imagery"
)

// SourceNames lists all data sources in evaluation order.
var SourceNames = []string{SourceWeather, SourcePrecipitation, SourceVegetation, SourceImagery}

// Coordinate is a WGS-84 latitude/longitude pair, validated before use.
type Coordinate struct {
	Lat float64
	Lon float64
}

// GridCell returns the coordinate rounded down to a 0.1-degree cell, used as
// a cache key so nearby requests share upstream fetches.
func (c Coordinate) GridCell() string {
	return fmt.Sprintf("%.1f,%.1f", c.Lat, c.Lon)
}

// DateRange is an inclusive calendar date span. Start and End are UTC
// midnights with Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days in the range, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format("20060102") + "-" + r.End.Format("20060102")
}

// DailyWeatherRecord is one day of surface weather from the POWER feed.
// Nil pointers are explicit absence, not zero.
type DailyWeatherRecord struct {
	Date            time.Time
	TemperatureC    *float64
	PrecipitationMM *float64
}

// DailyPrecipitationRecord is one day of precipitation from the GPM feed.
// Preferred over DailyWeatherRecord.PrecipitationMM when both are present.
type DailyPrecipitationRecord struct {
	Date            time.Time
	PrecipitationMM *float64
}

// VegetationSample is one NDVI observation, a unitless index in [-1, 1]
// used as a proxy for plant health.
type VegetationSample struct {
	Date time.Time
	NDVI *float64
}

// ImagerySnapshot is a per-day satellite snapshot URL from the imagery feed.
type ImagerySnapshot struct {
	Date time.Time `json:"date"`
	URL  string    `json:"url"`
}

// SourceAvailability maps a source name to whether it contributed data to an
// evaluation. Set once per request.
type SourceAvailability map[string]bool

// AnyAvailable reports whether at least one source succeeded.
func (a SourceAvailability) AnyAvailable() bool {
	for _, ok := range a {
		if ok {
			return true
		}
	}
	return false
}

// EvaluationRequest is a validated risk evaluation request. Crop is the
// canonical lowercase profile key.
type EvaluationRequest struct {
	Coordinate Coordinate
	Range      DateRange
	Crop       string
}

// RiskLevel is the overall classification of an evaluation.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Geo is the response echo of the request coordinate.
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Period is the response echo of the request date range, ISO formatted.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// RiskVerdict is the structured output of one evaluation. Request-scoped,
// never persisted.
type RiskVerdict struct {
	RequestID        string             `json:"request_id,omitempty"`
	RiskLevel        RiskLevel          `json:"risk_level"`
	Crop             string             `json:"crop"`
	Location         Geo                `json:"location"`
	Period           Period             `json:"period"`
	Alerts           []string           `json:"alerts"`
	Recommendations  []string           `json:"recommendations"`
	Summary          string             `json:"summary"`
	DataAvailability SourceAvailability `json:"data_availability"`
	Imagery          []ImagerySnapshot  `json:"imagery,omitempty"`
	GeneratedAt      time.Time          `json:"generated_at"`
}

// Date constructs a UTC midnight time for the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
