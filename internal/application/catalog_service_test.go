package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

func TestCatalogService_CreateBreedValidates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalogService().CreateBreed(t.Context(), CreateBreedRequest{Name: "   "})
	assert.True(t, domain.IsValidation(err))
}

func TestCatalogService_DeleteBreed(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	lab := env.seedBreed(t, "Labrador")
	beagle := env.seedBreed(t, "Beagle")
	ana := env.seedBreeder(t, "Ana", "ana@example.com")

	_, err := env.animalService(AnimalServiceOptions{}).Create(t.Context(), rexRequest(lab.ID, ana.ID), nil)
	require.NoError(t, err)

	assert.True(t, domain.IsConflict(svc.DeleteBreed(t.Context(), lab.ID)))
	assert.NoError(t, svc.DeleteBreed(t.Context(), beagle.ID))
	assert.True(t, domain.IsNotFound(svc.DeleteBreed(t.Context(), beagle.ID)))

	breeds, err := env.lookup.ListBreeds(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Labrador"}, optionNames(breeds))
}

func TestCatalogService_Breeders(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()

	_, err := svc.CreateBreeder(t.Context(), CreateBreederRequest{Name: "Ana", Email: "nope"})
	assert.True(t, domain.IsValidation(err))

	ana := env.seedBreeder(t, "Ana", "ana@example.com")
	got, err := svc.GetBreeder(t.Context(), ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)

	_, err = svc.GetBreeder(t.Context(), 404)
	assert.True(t, domain.IsNotFound(err))
}

func TestCatalogService_UpdateBreederVersionCheck(t *testing.T) {
	env := newTestEnv(t)
	svc := env.catalogService()
	ana := env.seedBreeder(t, "Ana", "ana@example.com")

	updated, err := svc.UpdateBreeder(t.Context(), ana.ID, UpdateBreederRequest{Name: "Ana Maria", Version: ana.Version})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, ana.Version+1, updated.Version)
	assert.Equal(t, "ana@example.com", updated.Email)

	_, err = svc.UpdateBreeder(t.Context(), ana.ID, UpdateBreederRequest{Name: "Stale", Version: ana.Version})
	assert.True(t, domain.IsConflict(err))

	_, err = svc.UpdateBreeder(t.Context(), 404, UpdateBreederRequest{Name: "Nobody"})
	assert.True(t, domain.IsNotFound(err))
}
