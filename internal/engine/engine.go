package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/terrapulse/agrorisk/internal/domain"
	"github.com/terrapulse/agrorisk/internal/observability"
)

// AlertPublisher delivers high-risk verdicts to downstream consumers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, verdict domain.RiskVerdict) error
}

// VerdictCache stores recently computed verdicts keyed by request.
type VerdictCache interface {
	Get(ctx context.Context, req domain.EvaluationRequest) (domain.RiskVerdict, bool)
	Put(ctx context.Context, req domain.EvaluationRequest, verdict domain.RiskVerdict)
}

// Options carries tuning knobs and optional collaborators. Zero values get
// sensible defaults; Publisher and Cache stay disabled when nil.
type Options struct {
	SourceTimeout   time.Duration
	MaxRetries      int
	BreakerFailures uint32
	BreakerOpenFor  time.Duration

	Publisher AlertPublisher
	Cache     VerdictCache
}

// Engine fans an evaluation request out to the four data sources, degrades
// around the ones that fail, and classifies the merged result.
type Engine struct {
	weather       domain.WeatherSource
	precipitation domain.PrecipitationSource
	vegetation    domain.VegetationSource
	imagery       domain.ImagerySource

	profiles domain.CropProfiles
	logger   *slog.Logger
	metrics  *observability.Metrics
	opts     Options

	breakers map[string]*gobreaker.CircuitBreaker
}

// New creates an Engine with one circuit breaker per data source.
func New(weather domain.WeatherSource, precipitation domain.PrecipitationSource, vegetation domain.VegetationSource, imagery domain.ImagerySource, profiles domain.CropProfiles, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Engine {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 15 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerOpenFor <= 0 {
		opts.BreakerOpenFor = 30 * time.Second
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker, len(domain.SourceNames))
	for _, name := range domain.SourceNames {
		breakers[name] = newBreaker(name, opts.BreakerFailures, opts.BreakerOpenFor)
	}

	return &Engine{
		weather:       weather,
		precipitation: precipitation,
		vegetation:    vegetation,
		imagery:       imagery,
		profiles:      profiles,
		logger:        logger,
		metrics:       metrics,
		opts:          opts,
		breakers:      breakers,
	}
}

func newBreaker(name string, failures uint32, openFor time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
	})
}

// CheckReadiness returns nil while at least one data source breaker is not
// open. With every breaker open no request can produce a verdict.
func (e *Engine) CheckReadiness(_ context.Context) error {
	for _, cb := range e.breakers {
		if cb.State() != gobreaker.StateOpen {
			return nil
		}
	}
	return errors.New("all data source circuit breakers are open")
}

// Evaluate runs the full assessment for a validated request: fetch the four
// sources concurrently, evaluate crop rules over whatever arrived, and build
// the verdict. Returns domain.ErrInsufficientData when no source delivered.
func (e *Engine) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.RiskVerdict, error) {
	start := time.Now()

	if e.opts.Cache != nil {
		if verdict, ok := e.opts.Cache.Get(ctx, req); ok {
			e.metrics.VerdictCache.WithLabelValues("hit").Inc()
			return verdict, nil
		}
		e.metrics.VerdictCache.WithLabelValues("miss").Inc()
	}

	profile, ok := e.profiles[req.Crop]
	if !ok {
		e.metrics.EvaluationErrors.WithLabelValues("validation").Inc()
		return domain.RiskVerdict{}, &domain.UnknownCropError{Crop: req.Crop, Known: e.profiles.Keys()}
	}

	var (
		weather       []domain.DailyWeatherRecord
		precipitation []domain.DailyPrecipitationRecord
		vegetation    []domain.VegetationSample
		imagery       []domain.ImagerySnapshot

		weatherOK, precipitationOK, vegetationOK, imageryOK bool
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		weather, weatherOK = fetchSource(ctx, e, domain.SourceWeather, func(fctx context.Context) ([]domain.DailyWeatherRecord, error) {
			return e.weather.FetchDaily(fctx, req.Coordinate, req.Range)
		})
	}()
	go func() {
		defer wg.Done()
		precipitation, precipitationOK = fetchSource(ctx, e, domain.SourcePrecipitation, func(fctx context.Context) ([]domain.DailyPrecipitationRecord, error) {
			return e.precipitation.FetchDaily(fctx, req.Coordinate, req.Range)
		})
	}()
	go func() {
		defer wg.Done()
		vegetation, vegetationOK = fetchSource(ctx, e, domain.SourceVegetation, func(fctx context.Context) ([]domain.VegetationSample, error) {
			return e.vegetation.FetchSamples(fctx, req.Coordinate, req.Range)
		})
	}()
	go func() {
		defer wg.Done()
		imagery, imageryOK = fetchSource(ctx, e, domain.SourceImagery, func(fctx context.Context) ([]domain.ImagerySnapshot, error) {
			return e.imagery.FetchSnapshots(fctx, req.Coordinate, req.Range)
		})
	}()
	wg.Wait()

	availability := domain.SourceAvailability{
		domain.SourceWeather:       weatherOK,
		domain.SourcePrecipitation: precipitationOK,
		domain.SourceVegetation:    vegetationOK,
		domain.SourceImagery:       imageryOK,
	}

	assessment, err := domain.Evaluate(profile, weather, precipitation, vegetation, availability)
	if err != nil {
		e.metrics.EvaluationErrors.WithLabelValues("insufficient_data").Inc()
		return domain.RiskVerdict{}, err
	}

	verdict := domain.FormatVerdict(req, assessment, availability, imagery)
	verdict.RequestID = uuid.NewString()

	e.metrics.EvaluationsTotal.WithLabelValues(string(verdict.RiskLevel)).Inc()
	e.metrics.EvaluationLatency.Observe(time.Since(start).Seconds())
	e.logger.Info("evaluation complete",
		"request_id", verdict.RequestID,
		"crop", req.Crop,
		"risk_level", verdict.RiskLevel,
		"alerts", len(verdict.Alerts))

	if e.opts.Cache != nil {
		e.opts.Cache.Put(ctx, req, verdict)
	}

	if verdict.RiskLevel == domain.RiskHigh && e.opts.Publisher != nil {
		if err := e.opts.Publisher.PublishAlert(ctx, verdict); err != nil {
			e.metrics.AlertErrors.Inc()
			e.logger.Error("alert publish failed", "request_id", verdict.RequestID, "error", err)
		} else {
			e.metrics.AlertsPublished.Inc()
		}
	}

	return verdict, nil
}

// fetchSource runs one source fetch behind its breaker with bounded retries.
// Failures and empty results mark the source unavailable; the evaluation
// continues with whatever the other sources returned. Plain function because
// methods cannot carry type parameters.
func fetchSource[T any](ctx context.Context, e *Engine, source string, fetch func(context.Context) ([]T, error)) ([]T, bool) {
	start := time.Now()
	fctx, cancel := context.WithTimeout(ctx, e.opts.SourceTimeout)
	defer cancel()

	op := func() ([]T, error) {
		out, err := e.breakers[source].Execute(func() (interface{}, error) {
			return fetch(fctx)
		})
		if err != nil {
			// An open breaker will not recover within this request.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return out.([]T), nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(e.opts.MaxRetries)), fctx)
	records, err := backoff.RetryWithData(op, policy)

	e.metrics.SourceFetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.SourceFetchFailures.WithLabelValues(source).Inc()
		e.logger.Warn("source fetch failed", "source", source, "error", err)
		return nil, false
	}
	if len(records) == 0 {
		e.metrics.SourceFetchFailures.WithLabelValues(source).Inc()
		e.logger.Warn("source returned no data", "source", source)
		return nil, false
	}
	return records, true
}
