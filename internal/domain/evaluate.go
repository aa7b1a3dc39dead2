package domain

import (
	"fmt"
	"time"
)

// Severity of a single alert condition.
type Severity int

const (
	SeverityModerate Severity = iota + 1
	SeverityHigh
)

// AlertCategory identifies the rule that fired, used to look up
// recommendations deterministically.
type AlertCategory string

const (
	AlertHeatStress        AlertCategory = "heat_stress"
	AlertColdStress        AlertCategory = "cold_stress"
	AlertTemperatureTrend  AlertCategory = "temperature_trend"
	AlertInsufficientWater AlertCategory = "insufficient_water"
	AlertFloodRisk         AlertCategory = "flood_risk"
	AlertVegetationStress  AlertCategory = "vegetation_stress"
	AlertWaterDataMissing  AlertCategory = "water_data_missing"
)

// Alert is one fired rule with a human-readable message.
type Alert struct {
	Category AlertCategory
	Severity Severity
	Message  string
}

// Rule cutoffs. Exposed as named constants so each threshold is independently
// testable and swappable; none of them is repeated inline.
const (
	// ScoreWeightHigh and ScoreWeightModerate weight each fired alert when
	// combining rule outcomes into a single score.
	ScoreWeightHigh     = 2
	ScoreWeightModerate = 1

	// HighScoreCutoff and MediumScoreCutoff map the combined score to a risk
	// level. Any single high-severity alert also forces a high level.
	HighScoreCutoff   = 4
	MediumScoreCutoff = 1

	// HighSeverityTempMarginC is how far beyond a crop's stress limit a
	// temperature must go before the condition counts as high severity.
	HighSeverityTempMarginC = 3.0

	// SustainedTempMarginC is how far the period average may drift outside
	// the optimal band before a sustained-trend alert fires.
	SustainedTempMarginC = 5.0

	// WaterDeficitMarginRatio scales the pro-rated water requirement; totals
	// below requirement*ratio fire an insufficient-water alert.
	WaterDeficitMarginRatio = 0.7

	// WaterExcessCeilingRatio scales the requirement the other way; totals
	// above requirement*ratio fire a flood-risk alert even without a single
	// extreme day.
	WaterExcessCeilingRatio = 2.5

	// NDVIHighSeverityDrop is the shortfall below the crop's NDVI stress
	// threshold at which vegetation stress counts as high severity.
	NDVIHighSeverityDrop = 0.15
)

// Assessment is the evaluator output before formatting.
type Assessment struct {
	Level           RiskLevel
	Alerts          []Alert
	Recommendations []string
}

// Evaluate runs the crop's rules over the normalized records and combines the
// outcomes into a risk level. Pure: identical inputs yield identical output.
// Returns ErrInsufficientData when no source contributed at all; partial
// availability degrades the inputs but still produces a verdict.
func Evaluate(profile CropProfile, weather []DailyWeatherRecord, precipitation []DailyPrecipitationRecord, vegetation []VegetationSample, availability SourceAvailability) (Assessment, error) {
	if !availability.AnyAvailable() {
		return Assessment{}, ErrInsufficientData
	}

	var alerts []Alert
	alerts = append(alerts, temperatureAlerts(profile, weather)...)
	alerts = append(alerts, waterAlerts(profile, weather, precipitation)...)
	alerts = append(alerts, vegetationAlerts(profile, vegetation)...)

	return Assessment{
		Level:           combineAlerts(alerts),
		Alerts:          alerts,
		Recommendations: recommend(alerts),
	}, nil
}

// temperatureAlerts checks each day with a present temperature against the
// crop's stress limits, then the period average against the optimal band.
// Emits at most one alert per category.
func temperatureAlerts(profile CropProfile, weather []DailyWeatherRecord) []Alert {
	var (
		hotDays, coldDays, sampled int
		peak, low, sum             float64
	)

	for _, rec := range weather {
		if rec.TemperatureC == nil {
			continue
		}
		t := *rec.TemperatureC
		if sampled == 0 {
			peak, low = t, t
		}
		sampled++
		sum += t
		if t > peak {
			peak = t
		}
		if t < low {
			low = t
		}
		if t > profile.MaxTempC {
			hotDays++
		}
		if t < profile.MinTempC {
			coldDays++
		}
	}
	if sampled == 0 {
		return nil
	}

	var alerts []Alert
	if hotDays > 0 {
		severity := SeverityModerate
		if peak > profile.MaxTempC+HighSeverityTempMarginC {
			severity = SeverityHigh
		}
		alerts = append(alerts, Alert{
			Category: AlertHeatStress,
			Severity: severity,
			Message: fmt.Sprintf("heat stress on %d of %d sampled day(s): peak %.1f°C above the %.1f°C limit",
				hotDays, sampled, peak, profile.MaxTempC),
		})
	}
	if coldDays > 0 {
		severity := SeverityModerate
		if low < profile.MinTempC-HighSeverityTempMarginC {
			severity = SeverityHigh
		}
		alerts = append(alerts, Alert{
			Category: AlertColdStress,
			Severity: severity,
			Message: fmt.Sprintf("cold stress on %d of %d sampled day(s): low %.1f°C below the %.1f°C limit",
				coldDays, sampled, low, profile.MinTempC),
		})
	}

	avg := sum / float64(sampled)
	switch {
	case avg > profile.OptimalHighC+SustainedTempMarginC:
		alerts = append(alerts, Alert{
			Category: AlertTemperatureTrend,
			Severity: SeverityModerate,
			Message:  fmt.Sprintf("sustained heat: %.1f°C average against an optimal band of %.0f–%.0f°C", avg, profile.OptimalLowC, profile.OptimalHighC),
		})
	case avg < profile.OptimalLowC-SustainedTempMarginC:
		alerts = append(alerts, Alert{
			Category: AlertTemperatureTrend,
			Severity: SeverityModerate,
			Message:  fmt.Sprintf("sustained cold: %.1f°C average against an optimal band of %.0f–%.0f°C", avg, profile.OptimalLowC, profile.OptimalHighC),
		})
	}

	return alerts
}

// waterAlerts sums daily precipitation over the period, preferring the GPM
// value for any day where both sources report one. Days without a value
// contribute nothing and the requirement is pro-rated over the days that do,
// so missing data is never read as measured drought. With no water data at
// all the only outcome is a missing-data alert.
func waterAlerts(profile CropProfile, weather []DailyWeatherRecord, precipitation []DailyPrecipitationRecord) []Alert {
	daily := make(map[time.Time]float64)
	for _, rec := range weather {
		if rec.PrecipitationMM != nil {
			daily[rec.Date] = *rec.PrecipitationMM
		}
	}
	for _, rec := range precipitation {
		if rec.PrecipitationMM != nil {
			daily[rec.Date] = *rec.PrecipitationMM
		}
	}

	if len(daily) == 0 {
		return []Alert{{
			Category: AlertWaterDataMissing,
			Severity: SeverityModerate,
			Message:  "no precipitation data available for the period; water balance not assessed",
		}}
	}

	var total, peakDay float64
	for _, mm := range daily {
		total += mm
		if mm > peakDay {
			peakDay = mm
		}
	}
	required := profile.MinDailyWaterMM * float64(len(daily))

	var alerts []Alert
	switch {
	case peakDay > profile.FloodDailyMM:
		alerts = append(alerts, Alert{
			Category: AlertFloodRisk,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("flood risk: %.1fmm rainfall in one day, above the %.1fmm limit", peakDay, profile.FloodDailyMM),
		})
	case total > required*WaterExcessCeilingRatio:
		alerts = append(alerts, Alert{
			Category: AlertFloodRisk,
			Severity: SeverityModerate,
			Message:  fmt.Sprintf("waterlogging risk: %.1fmm total rainfall, well above the %.1fmm requirement", total, required),
		})
	case total < required*WaterDeficitMarginRatio:
		alerts = append(alerts, Alert{
			Category: AlertInsufficientWater,
			Severity: SeverityModerate,
			Message:  fmt.Sprintf("insufficient water: %.1fmm total rainfall against a %.1fmm requirement", total, required),
		})
	}

	return alerts
}

// vegetationAlerts compares the latest present NDVI sample against the crop's
// stress threshold, scaling severity with the shortfall.
func vegetationAlerts(profile CropProfile, vegetation []VegetationSample) []Alert {
	var latest *VegetationSample
	for i := range vegetation {
		if vegetation[i].NDVI == nil {
			continue
		}
		if latest == nil || vegetation[i].Date.After(latest.Date) {
			latest = &vegetation[i]
		}
	}
	if latest == nil {
		return nil
	}

	value := *latest.NDVI
	if value >= profile.NDVIStressThreshold {
		return nil
	}

	severity := SeverityModerate
	if profile.NDVIStressThreshold-value >= NDVIHighSeverityDrop {
		severity = SeverityHigh
	}
	return []Alert{{
		Category: AlertVegetationStress,
		Severity: severity,
		Message:  fmt.Sprintf("vegetation stress: NDVI %.2f below the %.2f threshold", value, profile.NDVIStressThreshold),
	}}
}

// combineAlerts maps the weighted alert score to a risk level. A single
// high-severity alert is enough for a high level regardless of score.
func combineAlerts(alerts []Alert) RiskLevel {
	score := 0
	anyHigh := false
	for _, a := range alerts {
		if a.Severity == SeverityHigh {
			anyHigh = true
			score += ScoreWeightHigh
		} else {
			score += ScoreWeightModerate
		}
	}
	if anyHigh || score >= HighScoreCutoff {
		return RiskHigh
	}
	if score >= MediumScoreCutoff {
		return RiskMedium
	}
	return RiskLow
}

// maxRecommendations bounds the recommendation list so the verdict stays
// readable on small screens.
const maxRecommendations = 4

// recommendationTable maps each alert category to its advice. Static, keyed
// deterministically; categories without a row contribute nothing.
var recommendationTable = map[AlertCategory][]string{
	AlertHeatStress: {
		"increase irrigation frequency during hot periods",
		"schedule field work for early morning or evening",
	},
	AlertColdStress: {
		"consider protective covering for sensitive crops",
		"monitor frost warnings and act early",
	},
	AlertTemperatureTrend: {
		"track daily forecasts while temperatures stay outside the optimal band",
	},
	AlertInsufficientWater: {
		"monitor irrigation and soil moisture closely",
		"apply water conservation techniques",
	},
	AlertFloodRisk: {
		"improve field drainage and avoid low-lying plots",
		"delay harvest if crops are near maturity",
	},
	AlertVegetationStress: {
		"check soil nutrients and consider fertilization",
		"inspect for pests and disease affecting plant health",
	},
	AlertWaterDataMissing: {
		"verify local rainfall records before irrigation decisions",
	},
}

// recommendationOrder fixes the output order across categories.
var recommendationOrder = []AlertCategory{
	AlertHeatStress,
	AlertColdStress,
	AlertTemperatureTrend,
	AlertFloodRisk,
	AlertInsufficientWater,
	AlertVegetationStress,
	AlertWaterDataMissing,
}

// recommend derives advice from the fired alert categories. With no alerts it
// returns the single favorable-conditions entry.
func recommend(alerts []Alert) []string {
	if len(alerts) == 0 {
		return []string{"conditions favorable, continue current practices"}
	}

	fired := make(map[AlertCategory]bool, len(alerts))
	for _, a := range alerts {
		fired[a.Category] = true
	}

	var out []string
	for _, category := range recommendationOrder {
		if !fired[category] {
			continue
		}
		for _, rec := range recommendationTable[category] {
			out = append(out, rec)
			if len(out) == maxRecommendations {
				return out
			}
		}
	}
	return out
}
