package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/amara-oss/backend-duka/internal/delivery"
	"github.com/amara-oss/backend-duka/internal/events"
	"github.com/amara-oss/backend-duka/internal/lock"
)

const cacheKey = "delivery:settings"

// settingsAggregate identifies the singleton settings row in the event log.
var settingsAggregate = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Store persists the delivery configuration.
type Store interface {
	Get(ctx context.Context) (delivery.Settings, error)
	Update(ctx context.Context, s delivery.Settings) error
}

// Service serves delivery settings through a read-through cache and
// serialises updates with a distributed lock.
type Service struct {
	Store   Store
	Cache   *Cache
	Locker  lock.Locker
	LockTTL time.Duration
	Events  *events.Bus
}

// Get returns the current delivery settings, preferring the cache.
func (s *Service) Get(ctx context.Context) (delivery.Settings, error) {
	if s == nil || s.Store == nil {
		return delivery.Settings{}, errors.New("settings service not configured")
	}
	var cached delivery.Settings
	if ok, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	current, err := s.Store.Get(ctx)
	if err != nil {
		return delivery.Settings{}, err
	}
	_ = s.Cache.SetJSON(ctx, cacheKey, current)
	return current, nil
}

// Update stores new settings, invalidates the cache and emits
// settings.updated. Negative fees are clamped rather than rejected.
func (s *Service) Update(ctx context.Context, in delivery.Settings) (delivery.Settings, error) {
	if s == nil || s.Store == nil {
		return delivery.Settings{}, errors.New("settings service not configured")
	}
	in = clamp(in)
	apply := func(ctx context.Context) error {
		if err := s.Store.Update(ctx, in); err != nil {
			return err
		}
		return s.Cache.Delete(ctx, cacheKey)
	}
	if s.Locker.R != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 10 * time.Second
		}
		if err := s.Locker.WithLock(ctx, "lock:"+cacheKey, ttl, apply); err != nil {
			return delivery.Settings{}, err
		}
	} else if err := apply(ctx); err != nil {
		return delivery.Settings{}, err
	}
	if s.Events != nil {
		_, _ = s.Events.Emit(ctx, events.TopicSettingsUpdated, settingsAggregate, map[string]any{
			"enabled":               in.Enabled,
			"defaultFee":            in.DefaultFee,
			"freeDeliveryThreshold": in.FreeDeliveryThreshold,
		})
	}
	return in, nil
}

func clamp(in delivery.Settings) delivery.Settings {
	if in.DefaultFee < 0 {
		in.DefaultFee = 0
	}
	if in.FreeDeliveryThreshold < 0 {
		in.FreeDeliveryThreshold = 0
	}
	for area, fee := range in.AreaFees {
		if fee < 0 {
			in.AreaFees[area] = 0
		}
	}
	return in
}
