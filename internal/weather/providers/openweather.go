package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-coordinator/internal/timezone"
	"github.com/i474232898/weather-coordinator/internal/weather"
)

const (
	defaultBaseURL   = "https://api.openweathermap.org/data/2.5"
	defaultGeoURL    = "https://api.openweathermap.org/geo/1.0"
	iconURLTemplate  = "https://openweathermap.org/img/wn/%s@2x.png"
	citySearchLimit  = 5
	fetchByCityError = "Failed to fetch weather data for the specified city"
	searchError      = "Failed to search cities"
)

var errMissingConditions = errors.New("current weather payload has no weather entries")

// OpenWeatherClient implements weather.Client for OpenWeatherMap.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	zones   timezone.Resolver
	logger  *zap.Logger
}

var _ weather.Client = (*OpenWeatherClient)(nil)

// Option customizes an OpenWeatherClient.
type Option func(*OpenWeatherClient)

// WithBaseURL overrides the data API root (".../data/2.5").
func WithBaseURL(u string) Option {
	return func(c *OpenWeatherClient) { c.baseURL = u }
}

// WithGeoURL overrides the geocoding API root (".../geo/1.0").
func WithGeoURL(u string) Option {
	return func(c *OpenWeatherClient) { c.geoURL = u }
}

// WithZones sets how the local calendar of the forecast is chosen.
func WithZones(r timezone.Resolver) Option {
	return func(c *OpenWeatherClient) { c.zones = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *OpenWeatherClient) { c.logger = l }
}

// WithBackoff enables retries of transport errors, 429 and 5xx responses.
func WithBackoff(b BackoffConfig) Option {
	return func(c *OpenWeatherClient) { c.httpCfg.Backoff = b }
}

func NewOpenWeatherClient(client *http.Client, apiKey string, opts ...Option) *OpenWeatherClient {
	c := &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		geoURL:  defaultGeoURL,
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("openweather"),
		zones:   timezone.Local(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCurrentWeatherByCoords fetches current conditions and forecast for a position.
func (c *OpenWeatherClient) GetCurrentWeatherByCoords(ctx context.Context, lat, lon float64, unit weather.Unit) (weather.WeatherData, error) {
	c.logger.Debug("fetching weather by coordinates", zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Stringer("unit", unit))

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	notFound := &weather.Error{Kind: weather.KindNotFound, Message: weather.ErrNotFound.Message}
	return c.fetch(ctx, values, unit, notFound, weather.ErrUnknown.Message)
}

// GetCurrentWeatherByCity fetches current conditions and forecast for a city name.
func (c *OpenWeatherClient) GetCurrentWeatherByCity(ctx context.Context, city string, unit weather.Unit) (weather.WeatherData, error) {
	c.logger.Debug("fetching weather by city", zap.String("city", city), zap.Stringer("unit", unit))

	values := url.Values{}
	values.Set("q", city)

	notFound := &weather.Error{
		Kind:    weather.KindNotFound,
		Message: fmt.Sprintf("City %q not found. Please try a different city name.", city),
	}
	return c.fetch(ctx, values, unit, notFound, fetchByCityError)
}

// SearchCities returns at most five matches from the direct geocoding endpoint.
func (c *OpenWeatherClient) SearchCities(ctx context.Context, query string) ([]weather.CitySuggestion, error) {
	if c.apiKey == "" {
		return nil, &weather.Error{Kind: weather.KindUnauthorized, Message: searchError}
	}

	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", strconv.Itoa(citySearchLimit))
	values.Set("appid", c.apiKey)

	var results []weather.GeoResult
	if err := c.getJSON(ctx, c.geoURL+"/direct", values, &results); err != nil {
		c.logger.Error("city search failed", zap.String("query", query), zap.Error(err))
		kind := weather.KindUnknown
		var werr *weather.Error
		if errors.As(classify(err, weather.ErrNotFound, searchError), &werr) {
			kind = werr.Kind
		}
		return nil, &weather.Error{Kind: kind, Message: searchError, Err: err}
	}

	if len(results) > citySearchLimit {
		results = results[:citySearchLimit]
	}
	out := make([]weather.CitySuggestion, 0, len(results))
	for _, r := range results {
		out = append(out, weather.CitySuggestion{
			Name:    r.Name,
			Country: r.Country,
			Lat:     r.Lat,
			Lon:     r.Lon,
		})
	}
	return out, nil
}

// IconURL builds the 2x icon URL for a condition icon code.
func (c *OpenWeatherClient) IconURL(code string) string {
	return fmt.Sprintf(iconURLTemplate, code)
}

// fetch requests current weather and forecast concurrently and normalizes them.
func (c *OpenWeatherClient) fetch(
	ctx context.Context,
	values url.Values,
	unit weather.Unit,
	notFound *weather.Error,
	fallback string,
) (weather.WeatherData, error) {
	if c.apiKey == "" {
		return weather.WeatherData{}, &weather.Error{Kind: weather.KindUnauthorized, Message: weather.ErrUnauthorized.Message}
	}

	values.Set("appid", c.apiKey)
	values.Set("units", unit.String())

	var (
		cur weather.CurrentResponse
		fc  weather.ForecastResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, c.baseURL+"/weather", values, &cur)
	})
	g.Go(func() error {
		return c.getJSON(gctx, c.baseURL+"/forecast", values, &fc)
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("weather fetch failed", zap.Error(err))
		return weather.WeatherData{}, classify(err, notFound, fallback)
	}

	if len(cur.Weather) == 0 {
		return weather.WeatherData{}, &weather.Error{Kind: weather.KindUnknown, Message: fallback, Err: errMissingConditions}
	}
	fc.List = withConditions(fc.List)

	offset := cur.Timezone
	if offset == 0 {
		offset = fc.City.Timezone
	}
	tz := c.zones.Zone(cur.Coord.Lat, cur.Coord.Lon, offset)

	c.logger.Debug("weather response received", zap.String("name", cur.Name), zap.Int("slots", len(fc.List)))
	return weather.Normalize(cur, fc, tz), nil
}

// getJSON performs a GET through the resilience helper and decodes the body into out.
func (c *OpenWeatherClient) getJSON(ctx context.Context, endpoint string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", endpoint, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// withConditions drops forecast slots without a weather entry.
func withConditions(items []weather.ForecastItem) []weather.ForecastItem {
	out := items[:0:0]
	for _, item := range items {
		if len(item.Weather) > 0 {
			out = append(out, item)
		}
	}
	return out
}

// classify maps transport and status failures onto user facing weather errors.
func classify(err error, notFound *weather.Error, fallback string) error {
	var se *statusError
	switch {
	case errors.As(err, &se):
		switch se.Code {
		case http.StatusUnauthorized:
			return &weather.Error{Kind: weather.KindUnauthorized, Message: weather.ErrUnauthorized.Message, Err: err}
		case http.StatusNotFound:
			return &weather.Error{Kind: weather.KindNotFound, Message: notFound.Message, Err: err}
		default:
			msg := se.Message
			if msg == "" {
				msg = "Unknown error"
			}
			return &weather.Error{Kind: weather.KindUnknown, Message: "API Error: " + msg, Err: err}
		}
	case errors.Is(err, context.Canceled), errors.Is(err, errCircuitOpen):
		return &weather.Error{Kind: weather.KindUnknown, Message: fallback, Err: err}
	case isTransportError(err):
		return &weather.Error{Kind: weather.KindNetwork, Message: weather.ErrNetwork.Message, Err: err}
	default:
		return &weather.Error{Kind: weather.KindUnknown, Message: fallback, Err: err}
	}
}

func isTransportError(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) || errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// defaultTimeout is used when no timeout is configured.
const defaultTimeout = 10 * time.Second

// DefaultHTTPClient returns the shared outbound client used by cmd wiring.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
