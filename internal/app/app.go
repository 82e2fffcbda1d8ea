// Package app assembles the weather coordinator from configuration.
package app

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/i474232898/weather-coordinator/internal/config"
	"github.com/i474232898/weather-coordinator/internal/coordinator"
	"github.com/i474232898/weather-coordinator/internal/location"
	"github.com/i474232898/weather-coordinator/internal/store"
	"github.com/i474232898/weather-coordinator/internal/timezone"
	"github.com/i474232898/weather-coordinator/internal/weather"
	"github.com/i474232898/weather-coordinator/internal/weather/providers"
)

const nominatimUserAgent = "weather-coordinator/1.0"

// App holds the wired components.
type App struct {
	Coordinator *coordinator.Coordinator
	History     *store.History
	Store       weather.Store
	Logger      *zap.Logger

	closers []io.Closer
}

// New builds every collaborator of the coordinator. Close releases the store.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Logger: logger}

	zones, err := timezone.Parse(cfg.ForecastTimezone)
	if err != nil {
		return nil, err
	}

	httpClient := providers.DefaultHTTPClient(cfg.HTTPTimeout)

	opts := []providers.Option{
		providers.WithZones(zones),
		providers.WithLogger(logger.Named("openweather")),
	}
	if cfg.OpenWeatherBaseURL != "" {
		opts = append(opts, providers.WithBaseURL(cfg.OpenWeatherBaseURL))
	}
	if cfg.OpenWeatherGeoURL != "" {
		opts = append(opts, providers.WithGeoURL(cfg.OpenWeatherGeoURL))
	}
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; weather requests will fail")
	}
	client := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, opts...)

	kv, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = kv

	source := location.StaticSource{Enabled: cfg.Location.Enabled}
	if cfg.Location.Set {
		source.Coords = &location.Coordinates{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}
	}

	var geocoder location.ReverseGeocoder
	switch cfg.Geocoder {
	case config.GeocoderNominatim:
		geocoder = location.NewNominatimGeocoder(httpClient, cfg.NominatimURL, nominatimUserAgent)
	case config.GeocoderGoogle:
		geocoder = location.NewGoogleGeocoder(cfg.GoogleGeocodingAPIKey)
	}
	locations := location.NewService(source, geocoder, logger.Named("location"))

	a.History = store.NewHistory(cfg.HistoryMaxEntries, cfg.HistoryMaxAge)

	a.Coordinator = coordinator.New(client, locations, kv,
		coordinator.WithLogger(logger.Named("coordinator")),
		coordinator.WithHistory(a.History),
		coordinator.WithDefaultCity(cfg.DefaultCity),
	)

	logger.Info("app wired",
		zap.String("store", cfg.StoreDriver),
		zap.String("geocoder", cfg.Geocoder),
		zap.String("forecast_timezone", cfg.ForecastTimezone),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.AppConfig) (weather.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		s, err := store.OpenSQLite(ctx, cfg.StoreSQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.StoreRedis:
		s, err := store.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "weather:")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// Close releases the store connection.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
