package weather

import (
	"context"
	"time"
)

// Client abstracts the upstream weather API (OpenWeatherMap).
type Client interface {
	GetCurrentWeatherByCoords(ctx context.Context, lat, lon float64, unit Unit) (WeatherData, error)
	GetCurrentWeatherByCity(ctx context.Context, city string, unit Unit) (WeatherData, error)
	SearchCities(ctx context.Context, query string) ([]CitySuggestion, error)
	IconURL(code string) string
}

// LocationProvider resolves the device position. It never fails: nil means the
// position is unavailable for whatever reason.
type LocationProvider interface {
	GetLocationWithDetails(ctx context.Context) *LocationData
}

// Store is the key-value contract used to persist preferences.
// Get returns store.ErrNotFound for missing keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// HistoryEntry records one successful fetch.
type HistoryEntry struct {
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Temp      int       `json:"temp"`
	Condition string    `json:"condition"`
	Icon      string    `json:"icon"`
	Unit      Unit      `json:"unit"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// HistoryRecorder receives every successful fetch.
type HistoryRecorder interface {
	Record(entry HistoryEntry)
}
