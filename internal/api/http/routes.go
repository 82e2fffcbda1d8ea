package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/weather-coordinator/internal/coordinator"
	"github.com/i474232898/weather-coordinator/internal/store"
	"github.com/i474232898/weather-coordinator/internal/weather"
)

var validate = validator.New()

// requestTimeout bounds the upstream work done on behalf of one request.
const requestTimeout = 30 * time.Second

// keepAliveInterval is how often an idle state stream sends a comment line.
var keepAliveInterval = 15 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app. history may be nil.
// State streams end when ctx is done.
func RegisterRoutes(ctx context.Context, app *fiber.App, coord *coordinator.Coordinator, history *store.History) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(coord.State())
	})

	v1.Get("/state/stream", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")

		c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
			streamState(ctx, w, coord)
		}))
		return nil
	})

	v1.Post("/weather/location", func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		coord.FetchWeatherByLocation(ctx)
		return c.JSON(coord.State())
	})

	v1.Post("/weather/city", func(c *fiber.Ctx) error {
		req, err := parseCityRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		coord.FetchWeatherByCity(ctx, req.City)
		return c.JSON(coord.State())
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		coord.RefreshWeather(ctx)
		return c.JSON(coord.State())
	})

	v1.Post("/unit/toggle", func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		coord.ToggleUnit(ctx)
		return c.JSON(coord.State())
	})

	v1.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"favorites": coord.State().Favorites})
	})

	v1.Post("/favorites", func(c *fiber.Ctx) error {
		req, err := parseCityRequest(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coord.AddToFavorites(c.UserContext(), req.City)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"favorites": coord.State().Favorites})
	})

	v1.Delete("/favorites/:city", func(c *fiber.Ctx) error {
		city, err := url.PathUnescape(c.Params("city"))
		if err != nil || strings.TrimSpace(city) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid city")
		}

		coord.RemoveFromFavorites(c.UserContext(), city)
		return c.JSON(fiber.Map{"favorites": coord.State().Favorites})
	})

	v1.Get("/cities/search", func(c *fiber.Ctx) error {
		q := searchQuery{Q: strings.TrimSpace(c.Query("q"))}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "query must be at least 2 characters")
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cities, err := coord.SearchCities(ctx, q.Q)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if cities == nil {
			cities = []weather.CitySuggestion{}
		}
		return c.JSON(fiber.Map{"query": q.Q, "cities": cities})
	})

	v1.Get("/icons/:code", func(c *fiber.Ctx) error {
		q := iconQuery{Code: c.Params("code")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid icon code")
		}
		return c.JSON(fiber.Map{"code": q.Code, "url": coord.IconURL(q.Code)})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		entries := []weather.HistoryEntry{}
		if history != nil {
			entries = append(entries, history.List()...)
		}
		return c.JSON(fiber.Map{"entries": entries})
	})

	v1.Delete("/history", func(c *fiber.Ctx) error {
		if history != nil {
			history.Clear()
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// cityRequest is the body of city based requests.
type cityRequest struct {
	City string `json:"city" validate:"required"`
}

func parseCityRequest(c *fiber.Ctx) (cityRequest, error) {
	var req cityRequest
	if err := c.BodyParser(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	req.City = strings.TrimSpace(req.City)

	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

type searchQuery struct {
	Q string `validate:"required,min=2"`
}

type iconQuery struct {
	Code string `validate:"required,alphanum,len=3"`
}

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// streamState writes the current state and then every change as server-sent
// events until the client goes away or ctx is done. Changes that arrive while
// a write is in progress collapse into one event carrying the latest state.
func streamState(ctx context.Context, w *bufio.Writer, coord *coordinator.Coordinator) {
	changed := make(chan struct{}, 1)
	unsubscribe := coord.Subscribe(func(coordinator.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	if err := writeEvent(w, coord.State()); err != nil {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changed:
			if err := writeEvent(w, coord.State()); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := w.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}
}

func writeEvent(w *bufio.Writer, s coordinator.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", raw); err != nil {
		return err
	}
	return w.Flush()
}
