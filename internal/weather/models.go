package weather

import "fmt"

// Unit selects the measurement system requested from the upstream API.
type Unit string

const (
	UnitMetric   Unit = "metric"
	UnitImperial Unit = "imperial"
)

// ParseUnit validates a persisted or user supplied unit string.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitMetric, UnitImperial:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("unknown unit %q", s)
	}
}

// Toggle flips metric and imperial.
func (u Unit) Toggle() Unit {
	if u == UnitImperial {
		return UnitMetric
	}
	return UnitImperial
}

func (u Unit) String() string {
	if u == "" {
		return string(UnitMetric)
	}
	return string(u)
}

// Coord is a latitude/longitude pair as reported by the upstream API.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Place identifies the resolved location of a weather record.
type Place struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Coord   Coord  `json:"coord"`
}

// Summary is the short textual description of the weather plus its icon code.
type Summary struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentConditions holds the observed weather. Temperatures are rounded.
type CurrentConditions struct {
	Temp       int     `json:"temp"`
	FeelsLike  int     `json:"feels_like"`
	Humidity   int     `json:"humidity"`
	Pressure   int     `json:"pressure"`
	Visibility int     `json:"visibility"` // meters
	WindSpeed  float64 `json:"wind_speed"`
	WindDeg    int     `json:"wind_deg"`
	Weather    Summary `json:"weather"`
}

// TempRange is the min/max temperature of a forecast slot.
type TempRange struct {
	Max float64 `json:"max"`
	Min float64 `json:"min"`
}

// ForecastDay summarizes one calendar date of the forecast.
type ForecastDay struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	Temp      TempRange `json:"temp"`
	Weather   Summary   `json:"weather"`
	Humidity  int       `json:"humidity"`
	WindSpeed float64   `json:"wind_speed"`
}

// WeatherData is an immutable snapshot built from one current + forecast fetch.
// It is replaced wholesale on every successful fetch.
type WeatherData struct {
	Location Place             `json:"location"`
	Current  CurrentConditions `json:"current"`
	Forecast []ForecastDay     `json:"forecast"`
}

// LocationData is the device position plus optional reverse geocoded names.
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

// CitySuggestion is one city search result.
type CitySuggestion struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
