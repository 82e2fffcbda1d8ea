package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Reverse geocoders.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
	GeocoderNone      = "none"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string // empty means the public API
	OpenWeatherGeoURL  string

	HTTPTimeout time.Duration

	// DefaultCity is shown when no position is available.
	DefaultCity string
	// ForecastTimezone is "local", "utc", "city" or an IANA zone name.
	ForecastTimezone string

	Location LocationConfig

	Geocoder              string
	GoogleGeocodingAPIKey string
	NominatimURL          string

	StoreDriver     string
	StoreSQLitePath string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Search history retention.
	HistoryMaxEntries int           // 0 = unlimited
	HistoryMaxAge     time.Duration // 0 = unlimited

	// RefreshInterval re-fetches the shown weather periodically (0 = off).
	RefreshInterval time.Duration

	LogLevel  string
	LogFormat string

	Port string

	// EnvFileErr is why no .env file was loaded, nil when one was.
	EnvFileErr error
}

// LocationConfig is the configured device position.
type LocationConfig struct {
	Enabled   bool
	Latitude  float64
	Longitude float64
	Set       bool // both coordinates were given
}

// Load reads configuration from environment with sensible defaults. A
// missing .env file is not an error; it is reported in EnvFileErr.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileErr = godotenv.Load()

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.OpenWeatherGeoURL = os.Getenv("OPENWEATHER_GEO_URL")

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "London")
	cfg.ForecastTimezone = getenvDefault("FORECAST_TIMEZONE", "local")

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", GeocoderNominatim))
	switch cfg.Geocoder {
	case GeocoderNominatim, GeocoderGoogle, GeocoderNone:
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q", cfg.Geocoder)
	}
	cfg.GoogleGeocodingAPIKey = os.Getenv("GOOGLE_GEOCODING_API_KEY")
	cfg.NominatimURL = os.Getenv("NOMINATIM_URL")

	cfg.StoreDriver = strings.ToLower(getenvDefault("STORE_DRIVER", StoreMemory))
	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}
	cfg.StoreSQLitePath = getenvDefault("STORE_SQLITE_PATH", "data/weather.db")
	cfg.RedisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	cfg.HistoryMaxEntries = getenvInt("HISTORY_MAX_ENTRIES", 50)
	maxAge, err := getenvDuration("HISTORY_MAX_AGE", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.HistoryMaxAge = maxAge

	refresh, err := getenvDuration("REFRESH_INTERVAL", 0)
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = refresh

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func loadLocation() (LocationConfig, error) {
	loc := LocationConfig{Enabled: getenvBool("LOCATION_ENABLED", false)}

	lat, lon := os.Getenv("LOCATION_LAT"), os.Getenv("LOCATION_LON")
	if lat == "" && lon == "" {
		return loc, nil
	}
	if lat == "" || lon == "" {
		return loc, fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	var err error
	if loc.Latitude, err = strconv.ParseFloat(lat, 64); err != nil {
		return loc, fmt.Errorf("invalid LOCATION_LAT: %w", err)
	}
	if loc.Longitude, err = strconv.ParseFloat(lon, 64); err != nil {
		return loc, fmt.Errorf("invalid LOCATION_LON: %w", err)
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return loc, fmt.Errorf("location %v,%v out of range", loc.Latitude, loc.Longitude)
	}
	loc.Set = true
	return loc, nil
}

// NewLogger builds a zap logger for the configured level and format.
func (c *AppConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zc zap.Config
	switch strings.ToLower(c.LogFormat) {
	case "console", "text":
		zc = zap.NewDevelopmentConfig()
	default:
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
