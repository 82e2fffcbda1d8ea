package coordinator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

// FetchWeatherByLocation loads weather for the device position. When the
// position is unavailable it shows the default city together with an
// advisory error. Failures are stored in State.Error; loading is always
// cleared on return.
func (c *Coordinator) FetchWeatherByLocation(ctx context.Context) {
	c.Dispatch(SetLoading{Loading: true})
	defer c.Dispatch(SetLoading{Loading: false})
	c.Dispatch(ClearError{})

	unit := c.State().Unit

	var loc *weather.LocationData
	if c.location != nil {
		loc = c.location.GetLocationWithDetails(ctx)
	}

	if loc == nil || loc.Latitude == 0 || loc.Longitude == 0 {
		c.logger.Info("location unavailable, fetching weather for default city", zap.String("city", c.defaultCity))

		data, err := c.client.GetCurrentWeatherByCity(ctx, c.defaultCity, unit)
		if err != nil {
			c.fail("fetch weather by location", err)
			return
		}
		c.storeWeather(data, unit)
		c.Dispatch(SetError{Message: fallbackAdvisory(c.defaultCity)})
		return
	}

	c.logger.Info("got location", zap.Float64("lat", loc.Latitude), zap.Float64("lon", loc.Longitude))
	c.Dispatch(SetLocation{Location: *loc})

	data, err := c.client.GetCurrentWeatherByCoords(ctx, loc.Latitude, loc.Longitude, unit)
	if err != nil {
		c.fail("fetch weather by location", err)
		return
	}
	c.storeWeather(data, unit)
}

// FetchWeatherByCity loads weather for a city name.
func (c *Coordinator) FetchWeatherByCity(ctx context.Context, city string) {
	c.Dispatch(SetLoading{Loading: true})
	defer c.Dispatch(SetLoading{Loading: false})
	c.Dispatch(ClearError{})

	unit := c.State().Unit

	data, err := c.client.GetCurrentWeatherByCity(ctx, city, unit)
	if err != nil {
		c.fail("fetch weather by city", err)
		return
	}
	c.storeWeather(data, unit)
}

// RefreshWeather repeats the last fetch: by position when one is on record,
// otherwise by the name of the loaded city. Without either it does nothing.
func (c *Coordinator) RefreshWeather(ctx context.Context) {
	s := c.State()
	switch {
	case s.CurrentLocation != nil:
		c.FetchWeatherByLocation(ctx)
	case s.WeatherData != nil:
		c.FetchWeatherByCity(ctx, s.WeatherData.Location.Name)
	}
}

// AddToFavorites appends city (duplicates allowed) and persists the list.
func (c *Coordinator) AddToFavorites(ctx context.Context, city string) {
	s := c.Dispatch(AddFavorite{City: city})
	if err := c.persistFavorites(ctx, s.Favorites); err != nil {
		c.logger.Error("error adding to favorites", zap.String("city", city), zap.Error(err))
	}
}

// RemoveFromFavorites drops every occurrence of city and persists the list.
func (c *Coordinator) RemoveFromFavorites(ctx context.Context, city string) {
	s := c.Dispatch(RemoveFavorite{City: city})
	if err := c.persistFavorites(ctx, s.Favorites); err != nil {
		c.logger.Error("error removing from favorites", zap.String("city", city), zap.Error(err))
	}
}

// ToggleUnit flips metric/imperial, persists it and, when weather is loaded,
// refetches it in the new unit.
func (c *Coordinator) ToggleUnit(ctx context.Context) {
	s := c.update(func(s State) Action {
		return SetUnit{Unit: s.Unit.Toggle()}
	})

	if err := c.store.Set(ctx, UnitKey, s.Unit.String()); err != nil {
		c.logger.Error("error toggling unit", zap.Stringer("unit", s.Unit), zap.Error(err))
	}

	if s.WeatherData != nil {
		c.RefreshWeather(ctx)
	}
}

// SearchCities delegates to the weather client. Callers debounce input.
func (c *Coordinator) SearchCities(ctx context.Context, query string) ([]weather.CitySuggestion, error) {
	return c.client.SearchCities(ctx, query)
}

// IconURL returns the image URL for a condition icon code.
func (c *Coordinator) IconURL(code string) string {
	return c.client.IconURL(code)
}

func (c *Coordinator) storeWeather(data weather.WeatherData, unit weather.Unit) {
	c.Dispatch(SetWeatherData{Data: data})

	if c.history != nil {
		c.history.Record(weather.HistoryEntry{
			City:      data.Location.Name,
			Country:   data.Location.Country,
			Temp:      data.Current.Temp,
			Condition: data.Current.Weather.Main,
			Icon:      data.Current.Weather.Icon,
			Unit:      unit,
			FetchedAt: c.now().UTC(),
		})
	}
}

func (c *Coordinator) fail(op string, err error) {
	msg := errorMessage(err)
	c.logger.Error("weather fetch error", zap.String("op", op), zap.String("message", msg), zap.Error(err))
	c.Dispatch(SetError{Message: msg})
}

// errorMessage extracts the user facing text of err.
func errorMessage(err error) string {
	var werr *weather.Error
	if errors.As(err, &werr) && werr.Message != "" {
		return werr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return genericFetchError
}

func fallbackAdvisory(city string) string {
	return fmt.Sprintf("Unable to get your location. Showing weather for %s. You can search for your city using the search bar.", city)
}
