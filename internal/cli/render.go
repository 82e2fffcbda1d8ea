package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

var nowFunc = time.Now

func printWeather(w io.Writer, d weather.WeatherData, unit weather.Unit, now time.Time) {
	temp, speed := unitSymbols(unit)
	cur := d.Current

	fmt.Fprintf(w, "%s, %s\n", d.Location.Name, d.Location.Country)
	fmt.Fprintf(w, "  %d%s  %s (%s)\n", cur.Temp, temp, cur.Weather.Main, cur.Weather.Description)
	fmt.Fprintf(w, "  Feels like %d%s\n", cur.FeelsLike, temp)
	fmt.Fprintf(w, "  Humidity %d%%  Pressure %d hPa  Visibility %.1f km  Wind %g %s\n",
		cur.Humidity, cur.Pressure, float64(cur.Visibility)/1000, cur.WindSpeed, speed)

	if len(d.Forecast) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%d-Day Forecast\n", len(d.Forecast))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tDATE\tHIGH\tLOW\tCONDITIONS\tHUMIDITY\tWIND")
	for _, day := range d.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t%.0f%s\t%.0f%s\t%s\t%d%%\t%g %s\n",
			dayLabel(day.Date, now), day.Date,
			day.Temp.Max, temp, day.Temp.Min, temp,
			day.Weather.Main, day.Humidity, day.WindSpeed, speed)
	}
	tw.Flush()
}

func printCities(w io.Writer, cities []weather.CitySuggestion) {
	if len(cities) == 0 {
		fmt.Fprintln(w, "No cities found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCOUNTRY\tLAT\tLON")
	for _, c := range cities {
		fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\n", c.Name, c.Country, c.Lat, c.Lon)
	}
	tw.Flush()
}

func unitSymbols(u weather.Unit) (temp, speed string) {
	if u == weather.UnitImperial {
		return "°F", "mph"
	}
	return "°C", "m/s"
}

// dayLabel names a forecast date relative to now, falling back to the short
// weekday.
func dayLabel(date string, now time.Time) string {
	d, err := time.ParseInLocation("2006-01-02", date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Format("Mon")
	}
}
