package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/helpcar/quotechat/pkg/adapters/redis"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_RoundTripsFullRecord(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	drive := false
	rec := domain.NewSessionRecord("full", "nl")
	rec.Status = domain.StatusCompleted
	rec.Step = domain.StepSummaryReveal
	rec.Generation = 3
	rec.Answers = domain.Answers{
		Problem:         domain.ProblemTowing,
		VehicleCategory: domain.VehicleVan,
		Transmission:    domain.TransmissionManual,
		FourWheelDrive:  &drive,
		Location:        domain.Location{Kind: domain.LocationManual, Address: "Rue Neuve 10"},
		Destination:     &domain.Destination{Address: "Garage X", Distance: "12 km", Duration: "18 min"},
	}
	require.NoError(t, store.Save(ctx, "full", rec))

	loaded, err := store.Load(ctx, "full")
	require.NoError(t, err)
	assert.Equal(t, rec.Answers, loaded.Answers)
	assert.Equal(t, domain.StepSummaryReveal, loaded.Step)
	assert.Equal(t, uint64(3), loaded.Generation)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"

	require.NoError(t, store.Save(ctx, sessionID, domain.NewSessionRecord(sessionID, "fr")))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned against wall-clock time, which miniredis cannot fast-forward.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-session", domain.NewSessionRecord("my-session", "en")))

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, list, "my-session")
	assert.NoError(t, store.Ping(ctx))
}
