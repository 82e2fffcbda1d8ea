package weather

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func slot(at time.Time, tempMax float64, main string) ForecastItem {
	var item ForecastItem
	item.Dt = at.Unix()
	item.Main.TempMax = tempMax
	item.Main.TempMin = tempMax - 5
	item.Main.Humidity = 60
	item.Wind.Speed = 3.5
	item.Weather = []APICondition{{Main: main, Description: main + " sky", Icon: "01d"}}
	return item
}

func currentPayload(temp, feelsLike float64) CurrentResponse {
	var cur CurrentResponse
	cur.Name = "Paris"
	cur.Sys.Country = "FR"
	cur.Coord = Coord{Lat: 48.8534, Lon: 2.3488}
	cur.Main.Temp = temp
	cur.Main.FeelsLike = feelsLike
	cur.Main.Humidity = 71
	cur.Main.Pressure = 1013
	cur.Visibility = 10000
	cur.Wind = APIWind{Speed: 4.12, Deg: 230}
	cur.Weather = []APICondition{{Main: "Clouds", Description: "broken clouds", Icon: "04d"}}
	return cur
}

func TestBucketDays_NoonSlotWins(t *testing.T) {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	next := d.AddDate(0, 0, 1)

	items := []ForecastItem{
		slot(d.Add(9*time.Hour), 9, "Mist"),
		slot(d.Add(15*time.Hour), 15, "Clear"),
		slot(d.Add(21*time.Hour), 21, "Rain"),
		slot(next.Add(6*time.Hour), 6, "Fog"),
		slot(next.Add(13*time.Hour), 13, "Clouds"),
	}

	days := BucketDays(items, time.UTC)
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}

	if days[0].Date != "2024-03-10" || days[0].Temp.Max != 15 || days[0].Weather.Main != "Clear" {
		t.Errorf("day 0 = %+v, want 2024-03-10 from the 15:00 slot", days[0])
	}
	if days[1].Date != "2024-03-11" || days[1].Temp.Max != 13 || days[1].Weather.Main != "Clouds" {
		t.Errorf("day 1 = %+v, want 2024-03-11 from the 13:00 slot", days[1])
	}
	if days[0].Humidity != 60 || days[0].WindSpeed != 3.5 || days[0].Temp.Min != 10 {
		t.Errorf("day 0 details = %+v", days[0])
	}
}

func TestBucketDays_MorningOnlyDateDropped(t *testing.T) {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	items := []ForecastItem{
		slot(d.Add(3*time.Hour), 3, "Clear"),
		slot(d.Add(9*time.Hour), 9, "Clear"),
		slot(d.Add(36*time.Hour), 36, "Rain"),
	}

	days := BucketDays(items, time.UTC)
	if len(days) != 1 || days[0].Date != "2024-03-11" {
		t.Fatalf("days = %+v, want only 2024-03-11", days)
	}
}

func TestBucketDays_UsesGivenTimezone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 04:00 UTC is 13:00 in Tokyo, but before noon in UTC.
	at := time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC)
	items := []ForecastItem{slot(at, 20, "Clear")}

	if days := BucketDays(items, time.UTC); len(days) != 0 {
		t.Errorf("UTC days = %+v, want none", days)
	}
	days := BucketDays(items, tokyo)
	if len(days) != 1 || days[0].Date != "2024-03-10" {
		t.Errorf("JST days = %+v, want 2024-03-10", days)
	}
}

func TestBucketDays_CapsAtFiveDays(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var items []ForecastItem
	for h := 0; h < 8*24; h += 3 {
		items = append(items, slot(start.Add(time.Duration(h)*time.Hour), float64(h), "Clear"))
	}

	days := BucketDays(items, time.UTC)
	if len(days) != MaxForecastDays {
		t.Fatalf("len(days) = %d, want %d", len(days), MaxForecastDays)
	}
	for i, day := range days {
		want := start.AddDate(0, 0, i).Format(time.DateOnly)
		if day.Date != want {
			t.Errorf("days[%d].Date = %s, want %s", i, day.Date, want)
		}
		// The 12:00 slot is the first eligible one.
		if day.Temp.Max != float64(i*24+12) {
			t.Errorf("days[%d] picked slot %v, want %v", i, day.Temp.Max, i*24+12)
		}
	}
}

func TestBucketDays_RandomInputsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 200; run++ {
		n := rng.Intn(60)
		items := make([]ForecastItem, 0, n)
		for i := 0; i < n; i++ {
			hours := rng.Intn(10 * 24)
			items = append(items, slot(base.Add(time.Duration(hours)*time.Hour), float64(hours), "Clear"))
		}

		days := BucketDays(items, time.UTC)
		if len(days) > MaxForecastDays {
			t.Fatalf("run %d: %d days, want <= %d", run, len(days), MaxForecastDays)
		}
		for i := 1; i < len(days); i++ {
			if days[i-1].Date >= days[i].Date {
				t.Fatalf("run %d: dates not strictly increasing: %s then %s", run, days[i-1].Date, days[i].Date)
			}
		}

		// Each recorded day must come from the smallest hour >= 12 on that date.
		smallest := make(map[string]float64)
		for _, item := range items {
			at := time.Unix(item.Dt, 0).UTC()
			if at.Hour() < 12 {
				continue
			}
			date := at.Format(time.DateOnly)
			if cur, ok := smallest[date]; !ok || item.Main.TempMax < cur {
				smallest[date] = item.Main.TempMax
			}
		}
		for _, day := range days {
			if day.Temp.Max != smallest[day.Date] {
				t.Fatalf("run %d: %s used slot %v, want %v", run, day.Date, day.Temp.Max, smallest[day.Date])
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		temp          float64
		feelsLike     float64
		wantTemp      int
		wantFeelsLike int
	}{
		{name: "round down", temp: 21.4, feelsLike: 20.49, wantTemp: 21, wantFeelsLike: 20},
		{name: "round up", temp: 21.6, feelsLike: 19.51, wantTemp: 22, wantFeelsLike: 20},
		{name: "half away from zero", temp: 2.5, feelsLike: -2.5, wantTemp: 3, wantFeelsLike: -3},
		{name: "negative", temp: -7.2, feelsLike: -11.8, wantTemp: -7, wantFeelsLike: -12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Normalize(currentPayload(tt.temp, tt.feelsLike), ForecastResponse{}, time.UTC)
			if data.Current.Temp != tt.wantTemp {
				t.Errorf("Temp = %d, want %d", data.Current.Temp, tt.wantTemp)
			}
			if data.Current.FeelsLike != tt.wantFeelsLike {
				t.Errorf("FeelsLike = %d, want %d", data.Current.FeelsLike, tt.wantFeelsLike)
			}
			if data.Current.Temp != int(math.Round(tt.temp)) {
				t.Errorf("Temp = %d, want math.Round(%v)", data.Current.Temp, tt.temp)
			}
		})
	}
}

func TestNormalize_CopiesCurrentFields(t *testing.T) {
	d := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fc := ForecastResponse{List: []ForecastItem{slot(d, 12, "Clear")}}

	data := Normalize(currentPayload(18.2, 17.9), fc, time.UTC)

	if data.Location.Name != "Paris" || data.Location.Country != "FR" {
		t.Errorf("Location = %+v", data.Location)
	}
	if data.Location.Coord.Lat != 48.8534 || data.Location.Coord.Lon != 2.3488 {
		t.Errorf("Coord = %+v", data.Location.Coord)
	}
	c := data.Current
	if c.Humidity != 71 || c.Pressure != 1013 || c.Visibility != 10000 || c.WindSpeed != 4.12 || c.WindDeg != 230 {
		t.Errorf("Current = %+v", c)
	}
	if c.Weather != (Summary{Main: "Clouds", Description: "broken clouds", Icon: "04d"}) {
		t.Errorf("Current.Weather = %+v", c.Weather)
	}
	if len(data.Forecast) != 1 || data.Forecast[0].Date != "2024-03-10" {
		t.Errorf("Forecast = %+v", data.Forecast)
	}
}
