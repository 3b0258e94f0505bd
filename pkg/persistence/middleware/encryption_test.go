package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/portscope/pkg/adapters/memory"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/aretw0/portscope/pkg/persistence/middleware"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	session := domain.NewSession("sealed-session", "bifrostGraphShape1")
	session.Port = "points"
	session.Result = &domain.ExtractionResult{
		Data:       [][]domain.Value{{domain.Tuple(1.0, 5.0, 2.0)}},
		PlugType:   "float3",
		DataLength: 1,
	}
	require.NoError(t, secure.Save(ctx, session))

	stored, err := underlying.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
	assert.Empty(t, stored.Node)
	assert.Empty(t, stored.Port)
	assert.Nil(t, stored.Result)
	assert.NotEmpty(t, stored.Sealed)

	loaded, err := secure.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "bifrostGraphShape1", loaded.Node)
	assert.Equal(t, "points", loaded.Port)
	require.NotNil(t, loaded.Result)
	assert.True(t, loaded.Result.Data[0][0].Equal(domain.Tuple(1.0, 5.0, 2.0)))
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, domain.NewSession("rotation", "graphA")))

	newStore := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, "rotation")
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "graphA", loaded.Node)

	loaded.Node = "graphB"
	require.NoError(t, newStore.Save(ctx, loaded))

	_, err = oldStore.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone cannot read a session sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainSession(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), domain.NewSession("plain", "graph")))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_NotFound(t *testing.T) {
	secure := encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrKeySize)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("old")},
	})
	assert.ErrorIs(t, err, middleware.ErrKeySize)
}
