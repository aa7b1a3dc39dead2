package domain

import "sort"

// CropProfile holds the static thresholds used to interpret weather and
// vegetation data as risk for one crop. Profiles are built once at startup
// and never mutated.
type CropProfile struct {
	Name string

	// Temperature bounds in degrees Celsius. Days above MaxTempC or below
	// MinTempC are stress conditions; OptimalLowC..OptimalHighC is the band
	// used for sustained-trend checks.
	MinTempC     float64
	MaxTempC     float64
	OptimalLowC  float64
	OptimalHighC float64

	// MinDailyWaterMM is the minimum daily water requirement. The period
	// requirement is this value times the number of days with water data.
	MinDailyWaterMM float64

	// FloodDailyMM is the single-day rainfall above which flooding is likely
	// regardless of the period total.
	FloodDailyMM float64

	// NDVIStressThreshold is the vegetation index below which the crop is
	// considered stressed.
	NDVIStressThreshold float64
}

// CropProfiles is the immutable per-crop threshold table, keyed by lowercase
// crop identifier.
type CropProfiles map[string]CropProfile

// NewCropProfiles builds the built-in threshold table. Temperature limits and
// flood thresholds follow common agronomic stress limits for each crop; water
// requirements are expressed per day and pro-rated by the evaluator.
func NewCropProfiles() CropProfiles {
	return CropProfiles{
		"rice": {
			Name:                "rice",
			MinTempC:            15,
			MaxTempC:            35,
			OptimalLowC:         20,
			OptimalHighC:        30,
			MinDailyWaterMM:     6.0,
			FloodDailyMM:        50,
			NDVIStressThreshold: 0.4,
		},
		"wheat": {
			Name:                "wheat",
			MinTempC:            5,
			MaxTempC:            32,
			OptimalLowC:         15,
			OptimalHighC:        25,
			MinDailyWaterMM:     3.5,
			FloodDailyMM:        40,
			NDVIStressThreshold: 0.4,
		},
		"potato": {
			Name:                "potato",
			MinTempC:            2,
			MaxTempC:            30,
			OptimalLowC:         15,
			OptimalHighC:        24,
			MinDailyWaterMM:     4.0,
			FloodDailyMM:        35,
			NDVIStressThreshold: 0.35,
		},
		"jute": {
			Name:                "jute",
			MinTempC:            18,
			MaxTempC:            38,
			OptimalLowC:         24,
			OptimalHighC:        35,
			MinDailyWaterMM:     5.0,
			FloodDailyMM:        60,
			NDVIStressThreshold: 0.4,
		},
		"corn": {
			Name:                "corn",
			MinTempC:            10,
			MaxTempC:            35,
			OptimalLowC:         20,
			OptimalHighC:        30,
			MinDailyWaterMM:     4.5,
			FloodDailyMM:        45,
			NDVIStressThreshold: 0.5,
		},
	}
}

// Keys returns the crop identifiers in sorted order.
func (p CropProfiles) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
