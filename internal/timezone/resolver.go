package timezone

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// Resolver picks the calendar used to bucket forecast slots into days for a
// place. offsetSeconds is the UTC shift reported by the upstream API.
type Resolver interface {
	Zone(lat, lon float64, offsetSeconds int) *time.Location
}

// Fixed always answers with the same location.
type Fixed struct {
	Loc *time.Location
}

func (f Fixed) Zone(_, _ float64, _ int) *time.Location {
	if f.Loc == nil {
		return time.Local
	}
	return f.Loc
}

// Local resolves to the process local zone.
func Local() Resolver {
	return Fixed{Loc: time.Local}
}

// OffsetZone returns a fixed zone for a UTC shift in seconds.
func OffsetZone(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	sign := '+'
	abs := offsetSeconds
	if abs < 0 {
		sign = '-'
		abs = -abs
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, (abs%3600)/60)
	return time.FixedZone(name, offsetSeconds)
}

// CityResolver looks up the IANA zone of a coordinate, falling back to the
// upstream offset when the lookup fails.
type CityResolver struct {
	finder tzf.F
	mu     sync.RWMutex
	cache  map[string]*time.Location
}

var (
	finderOnce sync.Once
	finder     tzf.F
	finderErr  error
)

// NewCityResolver loads the timezone polygons once per process; the data set
// is large, so every resolver shares one finder.
func NewCityResolver() (*CityResolver, error) {
	finderOnce.Do(func() {
		f, err := tzf.NewDefaultFinder()
		if err != nil {
			finderErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		finder = f
	})
	if finderErr != nil {
		return nil, finderErr
	}
	return &CityResolver{finder: finder, cache: make(map[string]*time.Location)}, nil
}

func (r *CityResolver) Zone(lat, lon float64, offsetSeconds int) *time.Location {
	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return OffsetZone(offsetSeconds)
	}

	r.mu.RLock()
	loc, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return OffsetZone(offsetSeconds)
	}

	r.mu.Lock()
	r.cache[name] = loc
	r.mu.Unlock()
	return loc
}

// Parse builds a resolver from a config value: "local", "city", "utc" or an
// IANA zone name such as "Europe/Paris".
func Parse(mode string) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "local":
		return Local(), nil
	case "utc":
		return Fixed{Loc: time.UTC}, nil
	case "city":
		r, err := NewCityResolver()
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	loc, err := time.LoadLocation(mode)
	if err != nil {
		return nil, fmt.Errorf("invalid forecast timezone %q: %w", mode, err)
	}
	return Fixed{Loc: loc}, nil
}
