package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
)

func TestLookupService_OrderedOptions(t *testing.T) {
	env := newTestEnv(t)
	env.seedBreed(t, "Poodle")
	env.seedBreed(t, "Beagle")
	env.seedBreeder(t, "Zoe", "zoe@example.com")
	env.seedBreeder(t, "Ana", "ana@example.com")

	breeds, breeders, err := env.lookup.Options(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Beagle", "Poodle"}, optionNames(breeds))
	assert.Equal(t, []string{"Ana", "Zoe"}, optionNames(breeders))
}

func TestLookupService_ZeroTTLReadsCommittedState(t *testing.T) {
	env := newTestEnv(t)
	env.seedBreed(t, "Beagle")

	first, err := env.lookup.ListBreeds(t.Context())
	require.NoError(t, err)
	require.Len(t, first, 1)

	b, err := breed.NewBreed("Akita")
	require.NoError(t, err)
	require.NoError(t, env.gw.Stores().Breeds.Save(t.Context(), b))

	second, err := env.lookup.ListBreeds(t.Context())
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestLookupService_CacheBoundedAndInvalidated(t *testing.T) {
	env := newTestEnv(t)
	cached := NewLookupService(env.gw, time.Hour, zap.NewNop())
	env.seedBreed(t, "Beagle")

	_, err := cached.ListBreeds(t.Context())
	require.NoError(t, err)

	// a write that bypasses the catalog is not visible until the cache is flushed
	b, err := breed.NewBreed("Akita")
	require.NoError(t, err)
	require.NoError(t, env.gw.Stores().Breeds.Save(t.Context(), b))

	stale, err := cached.ListBreeds(t.Context())
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	cached.Invalidate()
	fresh, err := cached.ListBreeds(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Akita", "Beagle"}, optionNames(fresh))
}

func TestLookupService_CachedSliceNotShared(t *testing.T) {
	env := newTestEnv(t)
	cached := NewLookupService(env.gw, time.Hour, zap.NewNop())
	env.seedBreed(t, "Beagle")

	first, err := cached.ListBreeds(t.Context())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := cached.ListBreeds(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Beagle", second[0].Name)
}

func optionNames(opts []Option) []string {
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.Name
	}
	return names
}
