package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the compact calendar date format accepted on the wire,
// matching what the upstream POWER and GPM APIs use.
const dateLayout = "20060102"

// ParseRequest validates raw query inputs and returns a typed request.
// It fails with *ValidationError naming the offending field, or with
// *UnknownCropError for a crop with no profile. No adapter is called for an
// invalid request.
func ParseRequest(lat, lon, crop, start, end string, profiles CropProfiles, maxRangeDays int) (EvaluationRequest, error) {
	latitude, err := parseCoordinateField("lat", lat, -90, 90)
	if err != nil {
		return EvaluationRequest{}, err
	}
	longitude, err := parseCoordinateField("lon", lon, -180, 180)
	if err != nil {
		return EvaluationRequest{}, err
	}

	cropKey := strings.ToLower(strings.TrimSpace(crop))
	if cropKey == "" {
		return EvaluationRequest{}, &ValidationError{Field: "crop", Reason: "required"}
	}
	if _, ok := profiles[cropKey]; !ok {
		return EvaluationRequest{}, &UnknownCropError{Crop: crop, Known: profiles.Keys()}
	}

	startDate, err := parseDateField("start", start)
	if err != nil {
		return EvaluationRequest{}, err
	}
	endDate, err := parseDateField("end", end)
	if err != nil {
		return EvaluationRequest{}, err
	}
	if startDate.After(endDate) {
		return EvaluationRequest{}, &ValidationError{Field: "start", Reason: "start date must not be after end date"}
	}

	rng := DateRange{Start: startDate, End: endDate}
	if rng.Days() > maxRangeDays {
		return EvaluationRequest{}, &ValidationError{
			Field:  "end",
			Reason: fmt.Sprintf("date range spans %d days, maximum is %d", rng.Days(), maxRangeDays),
		}
	}

	return EvaluationRequest{
		Coordinate: Coordinate{Lat: latitude, Lon: longitude},
		Range:      rng,
		Crop:       cropKey,
	}, nil
}

func parseCoordinateField(field, raw string, min, max float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: field, Reason: "required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ValidationError{Field: field, Reason: "not a number"}
	}
	if v < min || v > max {
		return 0, &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%g is outside [%g, %g]", v, min, max),
		}
	}
	return v, nil
}

func parseDateField(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "required"}
	}
	d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "not a calendar date, expected YYYYMMDD"}
	}
	return d, nil
}
