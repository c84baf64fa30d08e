package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/socialsphere/guide/pkg/adapters/memory"
	"github.com/socialsphere/guide/pkg/domain"
	"github.com/socialsphere/guide/pkg/persistence/middleware"
	"github.com/socialsphere/guide/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealed(t *testing.T, inner ports.ConversationStore, cfg middleware.EncryptionConfig) ports.ConversationStore {
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(inner, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, sealed(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	inner := memory.NewStore()
	store := sealed(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	conv := domain.NewConversation("secret-session")
	conv.Step = domain.StepAnswering
	conv.Domain = "creator"
	conv.Turns = 4
	require.NoError(t, store.Save(ctx, "secret-session", conv))

	raw, err := inner.Load(ctx, "secret-session")
	require.NoError(t, err)
	assert.Empty(t, raw.Domain, "domain must not reach the inner store")
	assert.Zero(t, raw.Turns)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := store.Load(ctx, "secret-session")
	require.NoError(t, err)
	assert.Equal(t, domain.StepAnswering, loaded.Step)
	assert.Equal(t, "creator", loaded.Domain)
	assert.Equal(t, 4, loaded.Turns)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	inner := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := sealed(t, inner, middleware.EncryptionConfig{ActiveKey: oldKey})
	conv := domain.NewConversation("rotation")
	conv.Step = domain.StepClarifying
	conv.Domain = "help"
	require.NoError(t, oldStore.Save(ctx, "rotation", conv))

	newStore := sealed(t, inner, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "rotation")
	require.NoError(t, err)
	assert.Equal(t, "help", loaded.Domain)

	require.NoError(t, newStore.Save(ctx, "rotation", loaded))
	_, err = oldStore.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not open data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainConversation(t *testing.T) {
	inner := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, inner.Save(ctx, "plain", domain.NewConversation("plain")))

	store := sealed(t, inner, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_NotFoundPassesThrough(t *testing.T) {
	store := sealed(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorContains(t, err, "active key must be 32 bytes")

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorContains(t, err, "fallback key 0")
}

func TestDecodeKey(t *testing.T) {
	key := generateKey(t)
	decoded, err := middleware.DecodeKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, decoded)

	_, err = middleware.DecodeKey("!!!")
	assert.Error(t, err)
	_, err = middleware.DecodeKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
