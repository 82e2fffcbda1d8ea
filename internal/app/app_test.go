package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/i474232898/weather-coordinator/internal/config"
	"github.com/i474232898/weather-coordinator/internal/coordinator"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		HTTPTimeout:       time.Second,
		DefaultCity:       "London",
		ForecastTimezone:  "utc",
		Geocoder:          config.GeocoderNone,
		StoreDriver:       config.StoreMemory,
		HistoryMaxEntries: 5,
		HistoryMaxAge:     time.Hour,
	}
}

func TestNewWithStores(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
	}{
		{name: "memory", mutate: func(*config.AppConfig) {}},
		{name: "sqlite", mutate: func(c *config.AppConfig) {
			c.StoreDriver = config.StoreSQLite
			c.StoreSQLitePath = filepath.Join(t.TempDir(), "prefs.db")
		}},
		{name: "redis", mutate: func(c *config.AppConfig) {
			c.StoreDriver = config.StoreRedis
			c.RedisAddr = mr.Addr()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			a, err := New(context.Background(), cfg, nil)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer a.Close()

			ctx := context.Background()
			a.Coordinator.AddToFavorites(ctx, "Paris")
			a.Coordinator.ToggleUnit(ctx)

			// A second coordinator on the same store sees the saved preferences.
			fresh := coordinator.New(nil, nil, a.Store)
			fresh.LoadSaved(ctx)
			s := fresh.State()
			if len(s.Favorites) != 1 || s.Favorites[0] != "Paris" || s.Unit.String() != "imperial" {
				t.Errorf("reloaded state = %+v", s)
			}
		})
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.AppConfig)
	}{
		{name: "bad timezone", mutate: func(c *config.AppConfig) { c.ForecastTimezone = "Mars/Olympus" }},
		{name: "unreachable redis", mutate: func(c *config.AppConfig) {
			c.StoreDriver = config.StoreRedis
			c.RedisAddr = "127.0.0.1:1"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			if _, err := New(context.Background(), cfg, nil); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}
