package location

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"
)

// geocoder keeps its API key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder reverse geocodes through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) Lookup(ctx context.Context, latitude, longitude float64) (*Place, error) {
	if g.apiKey == "" {
		return nil, errors.New("google geocoding api key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	googleKeyMu.Lock()
	geocoder.ApiKey = g.apiKey
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  latitude,
		Longitude: longitude,
	})
	googleKeyMu.Unlock()
	if err != nil {
		return nil, err
	}
	if len(addresses) == 0 {
		return nil, nil
	}

	addr := addresses[0]
	return &Place{
		City:    firstNonEmpty(addr.City, addr.District),
		Country: addr.Country,
	}, nil
}
