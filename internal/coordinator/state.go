package coordinator

import (
	"encoding/json"
	"slices"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

// State is the single snapshot UI collaborators render from. Values returned
// by the coordinator must be treated as read-only.
type State struct {
	WeatherData     *weather.WeatherData  `json:"weatherData"`
	IsLoading       bool                  `json:"isLoading"`
	Error           string                `json:"error"` // empty means no error
	CurrentLocation *weather.LocationData `json:"currentLocation"`
	Favorites       []string              `json:"favorites"`
	Unit            weather.Unit          `json:"unit"`
}

// InitialState is the cold-start snapshot before saved preferences load.
func InitialState() State {
	return State{
		Favorites: []string{},
		Unit:      weather.UnitMetric,
	}
}

// MarshalJSON renders an empty Error as null.
func (s State) MarshalJSON() ([]byte, error) {
	type plain State
	var errMsg *string
	if s.Error != "" {
		errMsg = &s.Error
	}
	favorites := s.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return json.Marshal(struct {
		plain
		Error     *string  `json:"error"`
		Favorites []string `json:"favorites"`
	}{plain(s), errMsg, favorites})
}

// Action is a state transition understood by Reduce.
type Action interface {
	actionName() string
}

type (
	SetLoading     struct{ Loading bool }
	SetWeatherData struct{ Data weather.WeatherData }
	SetError       struct{ Message string }
	ClearError     struct{}
	SetLocation    struct{ Location weather.LocationData }
	AddFavorite    struct{ City string }
	RemoveFavorite struct{ City string }
	SetFavorites   struct{ Cities []string }
	SetUnit        struct{ Unit weather.Unit }
)

func (SetLoading) actionName() string     { return "SET_LOADING" }
func (SetWeatherData) actionName() string { return "SET_WEATHER_DATA" }
func (SetError) actionName() string       { return "SET_ERROR" }
func (ClearError) actionName() string     { return "CLEAR_ERROR" }
func (SetLocation) actionName() string    { return "SET_LOCATION" }
func (AddFavorite) actionName() string    { return "ADD_FAVORITE" }
func (RemoveFavorite) actionName() string { return "REMOVE_FAVORITE" }
func (SetFavorites) actionName() string   { return "SET_FAVORITES" }
func (SetUnit) actionName() string        { return "SET_UNIT" }

// Reduce computes the next state. It never mutates s: slices are copied before
// they change, so earlier snapshots stay valid.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.IsLoading = a.Loading
	case SetWeatherData:
		data := a.Data
		s.WeatherData = &data
		s.Error = ""
	case SetError:
		s.Error = a.Message
		s.IsLoading = false
	case ClearError:
		s.Error = ""
	case SetLocation:
		loc := a.Location
		s.CurrentLocation = &loc
	case AddFavorite:
		// Duplicates are kept.
		next := make([]string, 0, len(s.Favorites)+1)
		next = append(next, s.Favorites...)
		s.Favorites = append(next, a.City)
	case RemoveFavorite:
		s.Favorites = slices.DeleteFunc(slices.Clone(s.Favorites), func(c string) bool {
			return c == a.City
		})
		if s.Favorites == nil {
			s.Favorites = []string{}
		}
	case SetFavorites:
		s.Favorites = slices.Clone(a.Cities)
		if s.Favorites == nil {
			s.Favorites = []string{}
		}
	case SetUnit:
		s.Unit = a.Unit
	}
	return s
}
