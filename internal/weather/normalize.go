package weather

import (
	"cmp"
	"math"
	"slices"
	"time"
)

const (
	// MaxForecastDays caps the number of daily summaries.
	MaxForecastDays = 5

	// noonHour is the first local hour whose slot may represent a day.
	noonHour = 12
)

// Normalize combines a current-weather and a forecast payload into WeatherData.
// tz defines the local calendar used to bucket forecast slots into days; nil
// means time.Local. The current payload must carry at least one weather entry.
func Normalize(cur CurrentResponse, fc ForecastResponse, tz *time.Location) WeatherData {
	if tz == nil {
		tz = time.Local
	}

	return WeatherData{
		Location: Place{
			Name:    cur.Name,
			Country: cur.Sys.Country,
			Coord:   Coord{Lat: cur.Coord.Lat, Lon: cur.Coord.Lon},
		},
		Current: CurrentConditions{
			Temp:       int(math.Round(cur.Main.Temp)),
			FeelsLike:  int(math.Round(cur.Main.FeelsLike)),
			Humidity:   cur.Main.Humidity,
			Pressure:   cur.Main.Pressure,
			Visibility: cur.Visibility,
			WindSpeed:  cur.Wind.Speed,
			WindDeg:    cur.Wind.Deg,
			Weather:    summaryOf(cur.Weather[0]),
		},
		Forecast: BucketDays(fc.List, tz),
	}
}

// BucketDays picks one slot per local calendar date: the first slot at or after
// noon. Dates whose slots are all before noon are dropped. At most
// MaxForecastDays entries are returned, in ascending date order.
func BucketDays(items []ForecastItem, tz *time.Location) []ForecastDay {
	if tz == nil {
		tz = time.Local
	}

	ordered := slices.Clone(items)
	slices.SortStableFunc(ordered, func(a, b ForecastItem) int {
		return cmp.Compare(a.Dt, b.Dt)
	})

	days := make([]ForecastDay, 0, MaxForecastDays)
	seen := make(map[string]struct{})

	for _, item := range ordered {
		at := time.Unix(item.Dt, 0).In(tz)
		date := at.Format(time.DateOnly)

		if _, ok := seen[date]; ok {
			continue
		}
		if at.Hour() < noonHour {
			continue
		}
		seen[date] = struct{}{}

		days = append(days, ForecastDay{
			Date:      date,
			Temp:      TempRange{Max: item.Main.TempMax, Min: item.Main.TempMin},
			Weather:   summaryOf(item.Weather[0]),
			Humidity:  item.Main.Humidity,
			WindSpeed: item.Wind.Speed,
		})
		if len(days) == MaxForecastDays {
			break
		}
	}

	return days
}

func summaryOf(c APICondition) Summary {
	return Summary{Main: c.Main, Description: c.Description, Icon: c.Icon}
}
