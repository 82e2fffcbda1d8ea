package weather

// Payload shapes of the OpenWeatherMap 2.5 API. Only the fields we read are declared.

// APICondition is one entry of the upstream "weather" array.
type APICondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// APIWind is the upstream wind block.
type APIWind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

// CurrentResponse is the body of GET /data/2.5/weather.
type CurrentResponse struct {
	Coord   Coord          `json:"coord"`
	Weather []APICondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Visibility int     `json:"visibility"`
	Wind       APIWind `json:"wind"`
	Dt         int64   `json:"dt"`
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
	Timezone int    `json:"timezone"` // shift in seconds from UTC
	Name     string `json:"name"`
}

// ForecastItem is one 3-hour slot of the 5 day forecast.
type ForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []APICondition `json:"weather"`
	Wind    APIWind        `json:"wind"`
	DtTxt   string         `json:"dt_txt"`
}

// ForecastResponse is the body of GET /data/2.5/forecast.
type ForecastResponse struct {
	Cnt  int            `json:"cnt"`
	List []ForecastItem `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Coord    Coord  `json:"coord"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

// GeoResult is one element of GET /geo/1.0/direct.
type GeoResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
