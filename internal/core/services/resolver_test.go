package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/semindex-cli/internal/core/domain"
)

func TestResolver_RegisterBindsIdentities(t *testing.T) {
	env := newTestEnv(t)

	binding := env.handler.Binding()
	assert.NotEmpty(t, binding.HandlerID)
	require.Contains(t, binding.TypeIDs, "Document")
	assert.NotEmpty(t, binding.TypeIDs["Document"])
}

func TestResolver_RegisterIsIdempotent(t *testing.T) {
	sources := memory.NewSourceStore()
	embeddings := memory.NewEmbeddingStore(sources)
	registry := memory.NewRegistryStore(sources, embeddings)
	resolver := NewResolver(registry)

	first := newStubHandler("stub")
	require.NoError(t, resolver.Register(context.Background(), first))

	// A second instance with the same name rebinds the same records.
	second := newStubHandler("stub")
	require.NoError(t, resolver.Register(context.Background(), second))

	assert.Equal(t, first.Binding().HandlerID, second.Binding().HandlerID)
	assert.Equal(t, first.Binding().TypeIDs, second.Binding().TypeIDs)
	assert.Len(t, resolver.Handlers(), 1)
}

func TestResolver_FindFor(t *testing.T) {
	env := newTestEnv(t)

	source := &domain.Source{URI: "u", SourceHandlerID: env.handler.Binding().HandlerID}
	found, err := env.resolver.FindFor(source)
	require.NoError(t, err)
	assert.Same(t, env.handler, found.(*stubHandler))
}

func TestResolver_FindFor_UnknownHandler(t *testing.T) {
	env := newTestEnv(t)

	source := &domain.Source{URI: "u", SourceHandlerID: "no-such-id"}
	_, err := env.resolver.FindFor(source)
	assert.ErrorIs(t, err, domain.ErrHandlerNotRegistered)
}

func TestResolver_HandlerByName_CaseInsensitive(t *testing.T) {
	env := newTestEnv(t)

	found, err := env.resolver.HandlerByName("STUB")
	require.NoError(t, err)
	assert.Same(t, env.handler, found.(*stubHandler))

	_, err = env.resolver.HandlerByName("missing")
	assert.ErrorIs(t, err, domain.ErrHandlerNotRegistered)
}

func TestResolver_HandlersSortedByName(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.resolver.Register(context.Background(), newStubHandler("alpha")))

	handlers := env.resolver.Handlers()
	require.Len(t, handlers, 2)
	assert.Equal(t, "alpha", handlers[0].Name())
	assert.Equal(t, "stub", handlers[1].Name())
}
