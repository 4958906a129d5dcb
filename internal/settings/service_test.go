package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/amara-oss/backend-duka/internal/delivery"
	"github.com/amara-oss/backend-duka/internal/lock"
)

type memSettingsStore struct {
	current delivery.Settings
	reads   int
}

func (m *memSettingsStore) Get(context.Context) (delivery.Settings, error) {
	m.reads++
	return m.current, nil
}

func (m *memSettingsStore) Update(_ context.Context, s delivery.Settings) error {
	m.current = s
	return nil
}

func newTestService(t *testing.T) (*Service, *memSettingsStore) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := &memSettingsStore{current: delivery.Settings{Enabled: true, DefaultFee: 2000}}
	return &Service{
		Store:  store,
		Cache:  NewCache(client, time.Minute),
		Locker: lock.Locker{R: client},
	}, store
}

func TestGetPopulatesCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, delivery.Settings{Enabled: true, DefaultFee: 2000}, first)

	second, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, store.reads, "second read should come from cache")
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, delivery.Settings{
		Enabled:               true,
		DefaultFee:            3000,
		FreeDeliveryThreshold: 50_000,
	})
	require.NoError(t, err)
	require.Equal(t, delivery.Settings{Enabled: true, DefaultFee: 3000, FreeDeliveryThreshold: 50_000}, updated)

	fresh, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, updated, fresh)
	require.Equal(t, delivery.Settings{Enabled: true, DefaultFee: 3000, FreeDeliveryThreshold: 50_000}, store.current)
}

func TestUpdateClampsNegativeFees(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Update(context.Background(), delivery.Settings{
		Enabled:    true,
		DefaultFee: -500,
	})
	require.NoError(t, err)
	require.Zero(t, out.DefaultFee)
}
