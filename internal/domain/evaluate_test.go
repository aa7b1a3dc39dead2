package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = Date(2025, time.June, 1)

func ptr(v float64) *float64 { return &v }

// weatherWeek builds one weather record per entry starting at testStart.
// A NaN-free shorthand: temps and precips of equal length, nil allowed.
func weatherWeek(temps, precips []*float64) []DailyWeatherRecord {
	records := make([]DailyWeatherRecord, len(temps))
	for i := range temps {
		records[i] = DailyWeatherRecord{
			Date:            testStart.AddDate(0, 0, i),
			TemperatureC:    temps[i],
			PrecipitationMM: precips[i],
		}
	}
	return records
}

func steady(n int, v float64) []*float64 {
	out := make([]*float64, n)
	for i := range out {
		out[i] = ptr(v)
	}
	return out
}

func allSources(weather, precipitation, vegetation, imagery bool) SourceAvailability {
	return SourceAvailability{
		SourceWeather:       weather,
		SourcePrecipitation: precipitation,
		SourceVegetation:    vegetation,
		SourceImagery:       imagery,
	}
}

func alertCategories(alerts []Alert) []AlertCategory {
	out := make([]AlertCategory, len(alerts))
	for i, a := range alerts {
		out[i] = a.Category
	}
	return out
}

func findAlert(t *testing.T, alerts []Alert, category AlertCategory) Alert {
	t.Helper()
	for _, a := range alerts {
		if a.Category == category {
			return a
		}
	}
	t.Fatalf("no %s alert in %v", category, alertCategories(alerts))
	return Alert{}
}

func TestEvaluateNominalConditions(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]

	// 25°C every day, 7mm/day rain, healthy NDVI: nothing should fire.
	weather := weatherWeek(steady(7, 25), steady(7, 7))
	vegetation := []VegetationSample{{Date: testStart.AddDate(0, 0, 6), NDVI: ptr(0.65)}}

	result, err := Evaluate(rice, weather, nil, vegetation, allSources(true, false, true, true))

	require.NoError(t, err)
	assert.Equal(t, RiskLow, result.Level)
	assert.Empty(t, result.Alerts)
	assert.Equal(t, []string{"conditions favorable, continue current practices"}, result.Recommendations)
}

func TestEvaluateRiceWaterAndVegetationStress(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]

	// Seven days at 32-34°C, inside rice's [15,35] band, but only 10mm of
	// rain against a 42mm requirement and NDVI just under the 0.40 threshold.
	temps := []*float64{ptr(32), ptr(33), ptr(34), ptr(33), ptr(32), ptr(34), ptr(33)}
	precips := []*float64{ptr(2), ptr(0), ptr(3), ptr(0), ptr(1), ptr(4), ptr(0)}
	weather := weatherWeek(temps, precips)
	vegetation := []VegetationSample{{Date: testStart.AddDate(0, 0, 6), NDVI: ptr(0.38)}}

	result, err := Evaluate(rice, weather, nil, vegetation, allSources(true, false, true, true))

	require.NoError(t, err)
	assert.Equal(t, RiskMedium, result.Level)
	require.Len(t, result.Alerts, 2)

	water := findAlert(t, result.Alerts, AlertInsufficientWater)
	assert.Equal(t, SeverityModerate, water.Severity)
	assert.Contains(t, water.Message, "insufficient water")

	ndvi := findAlert(t, result.Alerts, AlertVegetationStress)
	assert.Equal(t, SeverityModerate, ndvi.Severity)

	assert.Contains(t, result.Recommendations, "monitor irrigation and soil moisture closely")
}

func TestEvaluateWheatHeatSpike(t *testing.T) {
	profiles := NewCropProfiles()
	wheat := profiles["wheat"]

	// One 40°C day is more than 3°C over wheat's 32°C limit: high severity.
	temps := steady(5, 22)
	temps[2] = ptr(40)
	weather := weatherWeek(temps, steady(5, 4))

	result, err := Evaluate(wheat, weather, nil, nil, allSources(true, false, false, false))

	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.Level)

	heat := findAlert(t, result.Alerts, AlertHeatStress)
	assert.Equal(t, SeverityHigh, heat.Severity)
	assert.Contains(t, heat.Message, "40.0°C")
}

func TestEvaluateColdStress(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]

	// 10°C days sit below rice's 15°C floor by more than the 3°C margin, and
	// the period average lands under the optimal band too.
	weather := weatherWeek(steady(4, 10), steady(4, 7))

	result, err := Evaluate(rice, weather, nil, nil, allSources(true, false, false, false))

	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.Level)

	cold := findAlert(t, result.Alerts, AlertColdStress)
	assert.Equal(t, SeverityHigh, cold.Severity)
	findAlert(t, result.Alerts, AlertTemperatureTrend)
}

func TestEvaluateFloodRules(t *testing.T) {
	profiles := NewCropProfiles()
	potato := profiles["potato"]

	t.Run("single extreme day is high severity", func(t *testing.T) {
		precips := steady(5, 4)
		precips[3] = ptr(60) // above potato's 35mm daily limit
		weather := weatherWeek(steady(5, 20), precips)

		result, err := Evaluate(potato, weather, nil, nil, allSources(true, false, false, false))

		require.NoError(t, err)
		assert.Equal(t, RiskHigh, result.Level)
		flood := findAlert(t, result.Alerts, AlertFloodRisk)
		assert.Equal(t, SeverityHigh, flood.Severity)
	})

	t.Run("sustained excess is moderate", func(t *testing.T) {
		// 30mm/day never breaches the daily limit but the 150mm total is
		// far beyond 2.5x the 20mm requirement.
		weather := weatherWeek(steady(5, 20), steady(5, 30))

		result, err := Evaluate(potato, weather, nil, nil, allSources(true, false, false, false))

		require.NoError(t, err)
		flood := findAlert(t, result.Alerts, AlertFloodRisk)
		assert.Equal(t, SeverityModerate, flood.Severity)
	})
}

func TestEvaluatePrecipitationSourcePreferred(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]

	// The weather feed reports a dry week; the dedicated precipitation feed
	// disagrees for every day and its values must win.
	weather := weatherWeek(steady(7, 25), steady(7, 0))
	precipitation := make([]DailyPrecipitationRecord, 7)
	for i := range precipitation {
		precipitation[i] = DailyPrecipitationRecord{
			Date:            testStart.AddDate(0, 0, i),
			PrecipitationMM: ptr(7),
		}
	}

	result, err := Evaluate(rice, weather, precipitation, nil, allSources(true, true, false, false))

	require.NoError(t, err)
	assert.NotContains(t, alertCategories(result.Alerts), AlertInsufficientWater)
}

func TestEvaluateMissingWaterData(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]

	t.Run("total absence flags missing data, not drought", func(t *testing.T) {
		// Temperatures present, precipitation absent on every day.
		weather := weatherWeek(steady(7, 25), make([]*float64, 7))

		result, err := Evaluate(rice, weather, nil, nil, allSources(true, false, false, false))

		require.NoError(t, err)
		categories := alertCategories(result.Alerts)
		assert.Contains(t, categories, AlertWaterDataMissing)
		assert.NotContains(t, categories, AlertInsufficientWater)
		assert.NotContains(t, categories, AlertFloodRisk)
	})

	t.Run("measured zero rainfall is drought", func(t *testing.T) {
		weather := weatherWeek(steady(7, 25), steady(7, 0))

		result, err := Evaluate(rice, weather, nil, nil, allSources(true, false, false, false))

		require.NoError(t, err)
		assert.Contains(t, alertCategories(result.Alerts), AlertInsufficientWater)
	})

	t.Run("gap days are pro-rated out of the requirement", func(t *testing.T) {
		// Only two days carry data, both well-watered; the five gaps must
		// not drag the total under the deficit margin.
		precips := make([]*float64, 7)
		precips[0] = ptr(8)
		precips[4] = ptr(9)
		weather := weatherWeek(steady(7, 25), precips)

		result, err := Evaluate(rice, weather, nil, nil, allSources(true, false, false, false))

		require.NoError(t, err)
		assert.NotContains(t, alertCategories(result.Alerts), AlertInsufficientWater)
	})
}

func TestEvaluateVegetationSeverityScaling(t *testing.T) {
	profiles := NewCropProfiles()
	corn := profiles["corn"]
	weather := weatherWeek(steady(3, 25), steady(3, 5))

	t.Run("shallow shortfall is moderate", func(t *testing.T) {
		vegetation := []VegetationSample{{Date: testStart, NDVI: ptr(0.45)}}
		result, err := Evaluate(corn, weather, nil, vegetation, allSources(true, false, true, false))

		require.NoError(t, err)
		ndvi := findAlert(t, result.Alerts, AlertVegetationStress)
		assert.Equal(t, SeverityModerate, ndvi.Severity)
	})

	t.Run("deep shortfall is high", func(t *testing.T) {
		vegetation := []VegetationSample{{Date: testStart, NDVI: ptr(0.30)}}
		result, err := Evaluate(corn, weather, nil, vegetation, allSources(true, false, true, false))

		require.NoError(t, err)
		ndvi := findAlert(t, result.Alerts, AlertVegetationStress)
		assert.Equal(t, SeverityHigh, ndvi.Severity)
		assert.Equal(t, RiskHigh, result.Level)
	})

	t.Run("latest sample wins", func(t *testing.T) {
		// An early stressed reading recovered by the latest sample.
		vegetation := []VegetationSample{
			{Date: testStart, NDVI: ptr(0.30)},
			{Date: testStart.AddDate(0, 0, 16), NDVI: ptr(0.70)},
		}
		result, err := Evaluate(corn, weather, nil, vegetation, allSources(true, false, true, false))

		require.NoError(t, err)
		assert.NotContains(t, alertCategories(result.Alerts), AlertVegetationStress)
	})

	t.Run("nil samples are skipped", func(t *testing.T) {
		vegetation := []VegetationSample{
			{Date: testStart, NDVI: ptr(0.30)},
			{Date: testStart.AddDate(0, 0, 16)},
		}
		result, err := Evaluate(corn, weather, nil, vegetation, allSources(true, false, true, false))

		require.NoError(t, err)
		ndvi := findAlert(t, result.Alerts, AlertVegetationStress)
		assert.Equal(t, SeverityHigh, ndvi.Severity)
	})
}

func TestEvaluateAllSourcesUnavailable(t *testing.T) {
	profiles := NewCropProfiles()

	_, err := Evaluate(profiles["rice"], nil, nil, nil, allSources(false, false, false, false))

	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestEvaluateIdempotent(t *testing.T) {
	profiles := NewCropProfiles()
	rice := profiles["rice"]
	weather := weatherWeek(steady(7, 37), steady(7, 1))
	vegetation := []VegetationSample{{Date: testStart, NDVI: ptr(0.2)}}
	availability := allSources(true, false, true, false)

	first, err := Evaluate(rice, weather, nil, vegetation, availability)
	require.NoError(t, err)
	second, err := Evaluate(rice, weather, nil, vegetation, availability)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateRiskLevelAlwaysSet(t *testing.T) {
	profiles := NewCropProfiles()
	valid := map[RiskLevel]bool{RiskLow: true, RiskMedium: true, RiskHigh: true}

	for _, crop := range profiles.Keys() {
		for _, temp := range []float64{-10, 5, 25, 45} {
			weather := weatherWeek(steady(5, temp), steady(5, 5))
			result, err := Evaluate(profiles[crop], weather, nil, nil, allSources(true, false, false, false))

			require.NoError(t, err)
			assert.True(t, valid[result.Level], "crop %s temp %.0f produced level %q", crop, temp, result.Level)
		}
	}
}

func TestRecommendationsCapped(t *testing.T) {
	profiles := NewCropProfiles()
	jute := profiles["jute"]

	// Fire heat, flood, and vegetation rules at once; the table holds more
	// advice than the response is allowed to carry.
	precips := steady(7, 10)
	precips[2] = ptr(80)
	weather := weatherWeek(steady(7, 44), precips)
	vegetation := []VegetationSample{{Date: testStart, NDVI: ptr(0.1)}}

	result, err := Evaluate(jute, weather, nil, vegetation, allSources(true, false, true, false))

	require.NoError(t, err)
	assert.Equal(t, RiskHigh, result.Level)
	assert.Len(t, result.Recommendations, maxRecommendations)
}
