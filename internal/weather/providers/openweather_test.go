package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-coordinator/internal/timezone"
	"github.com/i474232898/weather-coordinator/internal/weather"
)

const currentBody = `{
  "coord": {"lon": 2.3488, "lat": 48.8534},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 18.56, "feels_like": 18.2, "pressure": 1016, "humidity": 64},
  "visibility": 10000,
  "wind": {"speed": 4.63, "deg": 250},
  "dt": 1710072000,
  "sys": {"country": "FR"},
  "timezone": 3600,
  "name": "Paris"
}`

// 2024-03-10 09:00, 15:00, 21:00 UTC and 2024-03-11 06:00, 13:00 UTC.
const forecastBody = `{
  "cnt": 5,
  "list": [
    {"dt": 1710061200, "main": {"temp_min": 8, "temp_max": 9, "humidity": 80}, "weather": [{"main": "Mist", "description": "mist", "icon": "50d"}], "wind": {"speed": 1.1}},
    {"dt": 1710082800, "main": {"temp_min": 14, "temp_max": 15, "humidity": 55}, "weather": [{"main": "Clear", "description": "clear sky", "icon": "01d"}], "wind": {"speed": 3.2}},
    {"dt": 1710104400, "main": {"temp_min": 10, "temp_max": 11, "humidity": 70}, "weather": [{"main": "Rain", "description": "light rain", "icon": "10n"}], "wind": {"speed": 5.0}},
    {"dt": 1710136800, "main": {"temp_min": 6, "temp_max": 7, "humidity": 90}, "weather": [{"main": "Fog", "description": "fog", "icon": "50n"}], "wind": {"speed": 0.5}},
    {"dt": 1710162000, "main": {"temp_min": 12, "temp_max": 13, "humidity": 60}, "weather": [{"main": "Clouds", "description": "few clouds", "icon": "02d"}], "wind": {"speed": 2.4}}
  ],
  "city": {"name": "Paris", "country": "FR", "timezone": 3600}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*OpenWeatherClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewOpenWeatherClient(srv.Client(), "test-key",
		WithBaseURL(srv.URL+"/data/2.5"),
		WithGeoURL(srv.URL+"/geo/1.0"),
		WithZones(timezone.Fixed{Loc: time.UTC}),
	)
	return client, srv
}

func TestGetCurrentWeatherByCity_Success(t *testing.T) {
	var units []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("appid = %q", r.URL.Query().Get("appid"))
		}
		if r.URL.Query().Get("q") != "Paris" {
			t.Errorf("q = %q", r.URL.Query().Get("q"))
		}
		units = append(units, r.URL.Query().Get("units"))

		switch r.URL.Path {
		case "/data/2.5/weather":
			fmt.Fprint(w, currentBody)
		case "/data/2.5/forecast":
			fmt.Fprint(w, forecastBody)
		default:
			http.NotFound(w, r)
		}
	})

	data, err := client.GetCurrentWeatherByCity(context.Background(), "Paris", weather.UnitImperial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(units) != 2 || units[0] != "imperial" || units[1] != "imperial" {
		t.Errorf("units = %v, want imperial for both calls", units)
	}
	if data.Location.Name != "Paris" || data.Location.Country != "FR" {
		t.Errorf("Location = %+v", data.Location)
	}
	if data.Current.Temp != 19 || data.Current.FeelsLike != 18 {
		t.Errorf("Current temps = %d/%d, want 19/18", data.Current.Temp, data.Current.FeelsLike)
	}
	if len(data.Forecast) != 2 {
		t.Fatalf("Forecast = %+v, want 2 days", data.Forecast)
	}
	if data.Forecast[0].Weather.Main != "Clear" || data.Forecast[1].Weather.Main != "Clouds" {
		t.Errorf("Forecast picked %s/%s, want Clear/Clouds", data.Forecast[0].Weather.Main, data.Forecast[1].Weather.Main)
	}
}

func TestGetCurrentWeatherByCoords_SendsCoordinates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("lat") != "48.8534" || q.Get("lon") != "2.3488" {
			t.Errorf("lat/lon = %s/%s", q.Get("lat"), q.Get("lon"))
		}
		if q.Get("units") != "metric" {
			t.Errorf("units = %q", q.Get("units"))
		}
		if strings.HasSuffix(r.URL.Path, "/weather") {
			fmt.Fprint(w, currentBody)
			return
		}
		fmt.Fprint(w, forecastBody)
	})

	data, err := client.GetCurrentWeatherByCoords(context.Background(), 48.8534, 2.3488, weather.UnitMetric)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Location.Name != "Paris" {
		t.Errorf("Location.Name = %q", data.Location.Name)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		byCity   bool
		wantKind weather.Kind
		wantMsg  string
	}{
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"cod": 401, "message": "Invalid API key"}`,
			wantKind: weather.KindUnauthorized,
			wantMsg:  "Invalid API key. Please check your OpenWeatherMap API key.",
		},
		{
			name:     "coordinates not found",
			status:   http.StatusNotFound,
			body:     `{"cod": "404", "message": "not found"}`,
			wantKind: weather.KindNotFound,
			wantMsg:  "Location not found. Please try a different location.",
		},
		{
			name:     "city not found",
			status:   http.StatusNotFound,
			body:     `{"cod": "404", "message": "city not found"}`,
			byCity:   true,
			wantKind: weather.KindNotFound,
			wantMsg:  `City "Atlantis" not found. Please try a different city name.`,
		},
		{
			name:     "upstream message",
			status:   http.StatusBadRequest,
			body:     `{"cod": "400", "message": "wrong latitude"}`,
			wantKind: weather.KindUnknown,
			wantMsg:  "API Error: wrong latitude",
		},
		{
			name:     "server error without message",
			status:   http.StatusBadGateway,
			body:     `oops`,
			wantKind: weather.KindUnknown,
			wantMsg:  "API Error: Unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			var err error
			if tt.byCity {
				_, err = client.GetCurrentWeatherByCity(context.Background(), "Atlantis", weather.UnitMetric)
			} else {
				_, err = client.GetCurrentWeatherByCoords(context.Background(), 1, 2, weather.UnitMetric)
			}

			var werr *weather.Error
			if !errors.As(err, &werr) {
				t.Fatalf("error = %v, want *weather.Error", err)
			}
			if werr.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", werr.Kind, tt.wantKind)
			}
			if werr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", werr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	client := NewOpenWeatherClient(&http.Client{Timeout: time.Second}, "test-key", WithBaseURL(base))
	_, err := client.GetCurrentWeatherByCity(context.Background(), "Paris", weather.UnitMetric)

	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("error = %v, want network error", err)
	}
	if err.Error() != "Network error. Please check your internet connection." {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFetchWithoutAPIKey(t *testing.T) {
	client := NewOpenWeatherClient(http.DefaultClient, "")
	_, err := client.GetCurrentWeatherByCity(context.Background(), "Paris", weather.UnitMetric)
	if !errors.Is(err, weather.ErrUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestSearchCities(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geo/1.0/direct" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "5" || r.URL.Query().Get("q") != "Spring" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `[
			{"name": "Springfield", "country": "US", "state": "Illinois", "lat": 39.8, "lon": -89.6},
			{"name": "Springfield", "country": "US", "state": "Missouri", "lat": 37.2, "lon": -93.3},
			{"name": "Springs", "country": "ZA", "lat": -26.2, "lon": 28.4},
			{"name": "Springvale", "country": "AU", "lat": -37.9, "lon": 145.1},
			{"name": "Springdale", "country": "US", "lat": 36.2, "lon": -94.1},
			{"name": "Springville", "country": "US", "lat": 40.2, "lon": -111.6}
		]`)
	})

	got, err := client.SearchCities(context.Background(), "Spring")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	want := weather.CitySuggestion{Name: "Springfield", Country: "US", Lat: 39.8, Lon: -89.6}
	if got[0] != want {
		t.Errorf("got[0] = %+v, want %+v", got[0], want)
	}
}

func TestSearchCitiesFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.SearchCities(context.Background(), "Paris")
	if err == nil || err.Error() != "Failed to search cities" {
		t.Fatalf("error = %v, want Failed to search cities", err)
	}
}

func TestIconURL(t *testing.T) {
	client := NewOpenWeatherClient(http.DefaultClient, "k")
	if got := client.IconURL("10d"); got != "https://openweathermap.org/img/wn/10d@2x.png" {
		t.Errorf("IconURL = %q", got)
	}
}
