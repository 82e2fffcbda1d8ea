package location

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

// Coordinates is a device position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place holds reverse geocoded names. Empty strings mean unknown.
type Place struct {
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// CoordinateSource answers where the device is, gated by a permission check.
type CoordinateSource interface {
	RequestPermission(ctx context.Context) (bool, error)
	Current(ctx context.Context) (Coordinates, error)
}

// ReverseGeocoder turns a coordinate into a place.
type ReverseGeocoder interface {
	Lookup(ctx context.Context, latitude, longitude float64) (*Place, error)
}

// Service is the location provider consumed by the coordinator. None of its
// methods return errors: failures are logged and reported as false or nil.
type Service struct {
	source   CoordinateSource
	geocoder ReverseGeocoder
	logger   *zap.Logger
}

var _ weather.LocationProvider = (*Service)(nil)

// NewService creates a location service. geocoder may be nil to skip reverse geocoding.
func NewService(source CoordinateSource, geocoder ReverseGeocoder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, geocoder: geocoder, logger: logger}
}

// RequestPermission reports whether location access is granted.
func (s *Service) RequestPermission(ctx context.Context) bool {
	if s.source == nil {
		return false
	}
	granted, err := s.source.RequestPermission(ctx)
	if err != nil {
		s.logger.Error("error requesting location permission", zap.Error(err))
		return false
	}
	return granted
}

// GetCoordinates returns the current position or nil.
func (s *Service) GetCoordinates(ctx context.Context) *Coordinates {
	if !s.RequestPermission(ctx) {
		s.logger.Warn("error getting current location", zap.Error(weather.ErrPermissionDenied))
		return nil
	}

	coords, err := s.source.Current(ctx)
	if err != nil {
		s.logger.Warn("error getting current location", zap.Error(err))
		return nil
	}
	return &coords
}

// ReverseGeocode returns the place at a coordinate or nil.
func (s *Service) ReverseGeocode(ctx context.Context, latitude, longitude float64) *Place {
	if s.geocoder == nil {
		return nil
	}
	place, err := s.geocoder.Lookup(ctx, latitude, longitude)
	if err != nil {
		s.logger.Warn("error reverse geocoding", zap.Float64("lat", latitude), zap.Float64("lon", longitude), zap.Error(err))
		return nil
	}
	return place
}

// GetLocationWithDetails combines coordinates and reverse geocoding. A failed
// reverse lookup still yields the coordinates.
func (s *Service) GetLocationWithDetails(ctx context.Context) *weather.LocationData {
	coords := s.GetCoordinates(ctx)
	if coords == nil {
		return nil
	}

	loc := &weather.LocationData{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	}
	if place := s.ReverseGeocode(ctx, coords.Latitude, coords.Longitude); place != nil {
		loc.City = place.City
		loc.Country = place.Country
	}
	return loc
}

// StaticSource reports a configured position. It stands in for a device GPS.
type StaticSource struct {
	Enabled bool
	Coords  *Coordinates
}

func (s StaticSource) RequestPermission(context.Context) (bool, error) {
	return s.Enabled, nil
}

func (s StaticSource) Current(context.Context) (Coordinates, error) {
	if !s.Enabled {
		return Coordinates{}, weather.ErrPermissionDenied
	}
	if s.Coords == nil {
		return Coordinates{}, errors.Join(weather.ErrLocationUnavailable, errors.New("no coordinates configured"))
	}
	return *s.Coords, nil
}
