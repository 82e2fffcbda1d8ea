package weather

// Kind classifies failures surfaced by the weather and location collaborators.
type Kind string

const (
	KindPermissionDenied    Kind = "permission_denied"
	KindLocationUnavailable Kind = "location_unavailable"
	KindUnauthorized        Kind = "unauthorized"
	KindNotFound            Kind = "not_found"
	KindNetwork             Kind = "network_error"
	KindUnknown             Kind = "unknown_error"
)

// Error carries a human readable message meant to be shown as-is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrPermissionDenied    = &Error{Kind: KindPermissionDenied, Message: "Location permission not granted"}
	ErrLocationUnavailable = &Error{Kind: KindLocationUnavailable, Message: "Location unavailable"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "Invalid API key. Please check your OpenWeatherMap API key."}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "Location not found. Please try a different location."}
	ErrNetwork             = &Error{Kind: KindNetwork, Message: "Network error. Please check your internet connection."}
	ErrUnknown             = &Error{Kind: KindUnknown, Message: "Failed to fetch weather data"}
)
