package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-coordinator/internal/store"
	"github.com/i474232898/weather-coordinator/internal/weather"
)

// Start loads saved preferences in the background. The returned channel is
// closed once loading has finished, successfully or not.
func (c *Coordinator) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.LoadSaved(ctx)
	}()
	return done
}

// LoadSaved seeds favorites and unit from the store. Missing keys keep the
// defaults; any read or decode error is logged and nothing is applied.
func (c *Coordinator) LoadSaved(ctx context.Context) {
	var savedFavorites, savedUnit string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := readKey(gctx, c.store, FavoritesKey)
		savedFavorites = v
		return err
	})
	g.Go(func() error {
		v, err := readKey(gctx, c.store, UnitKey)
		savedUnit = v
		return err
	})
	if err := g.Wait(); err != nil {
		c.logger.Error("error loading saved data", zap.Error(err))
		return
	}

	if savedFavorites != "" {
		var favorites []string
		if err := json.Unmarshal([]byte(savedFavorites), &favorites); err != nil {
			c.logger.Error("error loading saved data", zap.String("key", FavoritesKey), zap.Error(err))
			return
		}
		c.Dispatch(SetFavorites{Cities: favorites})
	}

	if savedUnit != "" {
		unit, err := weather.ParseUnit(savedUnit)
		if err != nil {
			c.logger.Warn("ignoring saved unit", zap.String("key", UnitKey), zap.Error(err))
			return
		}
		c.Dispatch(SetUnit{Unit: unit})
	}
}

// readKey returns "" for missing keys.
func readKey(ctx context.Context, s weather.Store, key string) (string, error) {
	v, err := s.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// persistFavorites writes the whole list. There is no read-modify-write guard:
// concurrent writers may leave the store behind the in-memory state.
func (c *Coordinator) persistFavorites(ctx context.Context, favorites []string) error {
	if favorites == nil {
		favorites = []string{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	return c.store.Set(ctx, FavoritesKey, string(raw))
}
