package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/helpcar/quotechat/pkg/adapters/memory"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewStore())
}

func TestMemoryStore_ContractWithTTL(t *testing.T) {
	ports.RunSessionStoreContract(t, memory.NewStore(memory.WithTTL(time.Hour)))
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore(
		memory.WithTTL(10*time.Minute),
		memory.WithNow(func() time.Time { return now }),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", &domain.SessionRecord{ID: "a", Language: "fr"}))
	now = now.Add(5 * time.Minute)
	require.NoError(t, store.Save(ctx, "b", &domain.SessionRecord{ID: "b", Language: "nl"}))

	now = now.Add(6 * time.Minute)
	_, err := store.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	rec, err := store.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "nl", rec.Language)

	t.Run("save restarts the ttl", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "b", rec))
		now = now.Add(9 * time.Minute)
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, ids)
	})

	t.Run("list sweeps expired records", func(t *testing.T) {
		now = now.Add(time.Hour)
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Zero(t, store.Len())
	})
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "a", &domain.SessionRecord{ID: "a", Language: "fr"}))

	rec, err := store.Load(ctx, "a")
	require.NoError(t, err)
	rec.Language = "en"

	again, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "fr", again.Language)
}
