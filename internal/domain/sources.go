package domain

import "context"

// WeatherSource fetches daily surface weather for a location and period.
type WeatherSource interface {
	FetchDaily(ctx context.Context, coord Coordinate, rng DateRange) ([]DailyWeatherRecord, error)
}

// PrecipitationSource fetches daily precipitation estimates.
type PrecipitationSource interface {
	FetchDaily(ctx context.Context, coord Coordinate, rng DateRange) ([]DailyPrecipitationRecord, error)
}

// VegetationSource fetches NDVI samples for a location and period.
type VegetationSource interface {
	FetchSamples(ctx context.Context, coord Coordinate, rng DateRange) ([]VegetationSample, error)
}

// ImagerySource reports satellite snapshot availability for a period.
type ImagerySource interface {
	FetchSnapshots(ctx context.Context, coord Coordinate, rng DateRange) ([]ImagerySnapshot, error)
}
