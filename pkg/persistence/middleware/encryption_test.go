package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/helpcar/quotechat/pkg/adapters/memory"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/helpcar/quotechat/pkg/persistence/middleware"
	"github.com/helpcar/quotechat/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func leadRecord(id string) *domain.SessionRecord {
	rec := domain.NewSessionRecord(id, "fr")
	rec.Status = domain.StatusRunning
	rec.Step = domain.StepLocation
	rec.Answers.Problem = domain.ProblemTowing
	rec.Answers.Location = domain.Location{Kind: domain.LocationManual, Address: "Rue Neuve 1, Bruxelles"}
	return rec
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, store)
}

func TestEncryptionMiddleware_HidesAnswers(t *testing.T) {
	backend := memory.NewStore()
	store := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "lead", leadRecord("lead")))

	raw, err := backend.Load(ctx, "lead")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Answers.Location.Address)
	assert.Empty(t, raw.Answers.Problem)
	assert.Equal(t, domain.StatusRunning, raw.Status)

	loaded, err := store.Load(ctx, "lead")
	require.NoError(t, err)
	assert.Equal(t, "Rue Neuve 1, Bruxelles", loaded.Answers.Location.Address)
	assert.Equal(t, domain.StepLocation, loaded.Step)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	backend := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	oldStore := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: oldKey})
	ctx := context.Background()

	require.NoError(t, oldStore.Save(ctx, "rotation", leadRecord("rotation")))

	newStore := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	rec, err := newStore.Load(ctx, "rotation")
	require.NoError(t, err, "fallback key decrypts records sealed before the rotation")

	require.NoError(t, newStore.Save(ctx, "rotation", rec))
	_, err = oldStore.Load(ctx, "rotation")
	assert.Error(t, err, "records sealed with the new key are unreadable with the old one")
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "plain", leadRecord("plain")))

	store := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestParseKeys(t *testing.T) {
	good := base64.StdEncoding.EncodeToString(generateKey(t))
	cfg, err := middleware.ParseKeys(good, good)
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, middleware.KeySize)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
	_, err = middleware.ParseKeys(good, "bad")
	assert.ErrorContains(t, err, "fallback key 0")
}
