package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

const (
	// DefaultCity is shown when the device position is unavailable.
	DefaultCity = "London"

	genericFetchError = "Failed to fetch weather data"
)

// Keys under which preferences are persisted.
const (
	FavoritesKey = "favorites"
	UnitKey      = "unit"
)

// Coordinator owns the weather state and runs every user intent against the
// weather client, the location provider and the preference store.
//
// Each action is applied atomically, but compound operations are not
// serialized: two overlapping fetches both complete and the one finishing
// last wins.
type Coordinator struct {
	client   weather.Client
	location weather.LocationProvider
	store    weather.Store
	history  weather.HistoryRecorder
	logger   *zap.Logger

	defaultCity string
	now         func() time.Time

	// notifyMu is held from reduction until every subscriber has seen the
	// result, so snapshots reach subscribers in the order they were made.
	notifyMu    sync.Mutex
	mu          sync.Mutex
	state       State
	subscribers map[uuid.UUID]func(State)
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithHistory records every successful fetch.
func WithHistory(h weather.HistoryRecorder) Option {
	return func(c *Coordinator) { c.history = h }
}

// WithDefaultCity replaces London as the fallback city.
func WithDefaultCity(city string) Option {
	return func(c *Coordinator) {
		if city != "" {
			c.defaultCity = city
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator in its initial state. Call Start to load saved
// preferences.
func New(client weather.Client, location weather.LocationProvider, store weather.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:      client,
		location:    location,
		store:       store,
		logger:      zap.NewNop(),
		defaultCity: DefaultCity,
		now:         time.Now,
		state:       InitialState(),
		subscribers: make(map[uuid.UUID]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every new snapshot, in the order the
// actions were applied. fn runs on the goroutine that dispatched the action.
// It must not block or dispatch, since other dispatches wait for it.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	id := uuid.New()

	c.mu.Lock()
	c.subscribers[id] = fn
	c.mu.Unlock()

	c.logger.Debug("subscriber added", zap.Stringer("id", id))
	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Dispatch applies one action and notifies subscribers.
func (c *Coordinator) Dispatch(a Action) State {
	return c.update(func(State) Action { return a })
}

// update derives an action from the current state and applies it under the
// same lock, so read-then-write intents like unit toggling cannot interleave.
func (c *Coordinator) update(next func(State) Action) State {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	a := next(c.state)
	c.state = Reduce(c.state, a)
	s := c.state
	subs := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	c.logger.Debug("action dispatched", zap.String("action", a.actionName()))
	for _, fn := range subs {
		fn(s)
	}
	return s
}
