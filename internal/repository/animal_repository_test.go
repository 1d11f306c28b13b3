package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
)

func TestAnimalRepository_SaveAndFindWithRelations(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")

	rex := newTestAnimal(t, "Rex", lab.ID(), ana.ID())
	rex.AttachPhoto(animal.NewSentinelPhoto(time.Now().UTC()))

	repo := NewGormAnimalRepository(db)
	require.NoError(t, repo.Save(ctx, rex))
	require.NotZero(t, rex.ID())
	require.Len(t, rex.Photos(), 1)
	assert.NotZero(t, rex.Photos()[0].ID())
	assert.Equal(t, rex.ID(), rex.Photos()[0].AnimalID())

	got, err := repo.FindByID(ctx, rex.ID(), animal.Include{Breed: true, Breeder: true, Photos: true})
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Name())
	require.NotNil(t, got.Breed())
	assert.Equal(t, "Labrador", got.Breed().Name())
	require.NotNil(t, got.Breeder())
	assert.Equal(t, "Ana", got.Breeder().Name())
	require.Len(t, got.Photos(), 1)
	assert.True(t, got.Photos()[0].IsSentinel())
	assert.Equal(t, animal.NoPhotoLocation, got.Photos()[0].Location())

	bare, err := repo.FindByID(ctx, rex.ID(), animal.Include{})
	require.NoError(t, err)
	assert.Nil(t, bare.Breed())
	assert.Nil(t, bare.Photos())
}

func TestAnimalRepository_FindMissing(t *testing.T) {
	db := newTestDB(t)

	_, err := NewGormAnimalRepository(db).FindByID(t.Context(), 42, animal.Include{})
	assert.True(t, domain.IsNotFound(err))
}

func TestAnimalRepository_UpdateDetectsStaleVersion(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")
	repo := NewGormAnimalRepository(db)

	rex := newTestAnimal(t, "Rex", lab.ID(), ana.ID())
	require.NoError(t, repo.Save(ctx, rex))

	first, err := repo.FindByID(ctx, rex.ID(), animal.Include{})
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, rex.ID(), animal.Include{})
	require.NoError(t, err)

	attrs := first.Attributes()
	attrs.Name = "Rex II"
	require.NoError(t, first.Update(attrs))
	require.NoError(t, repo.Update(ctx, first))

	attrs = second.Attributes()
	attrs.Name = "Rex III"
	require.NoError(t, second.Update(attrs))
	err = repo.Update(ctx, second)
	assert.True(t, domain.IsConflict(err))

	got, err := repo.FindByID(ctx, rex.ID(), animal.Include{})
	require.NoError(t, err)
	assert.Equal(t, "Rex II", got.Name())
	assert.Equal(t, int64(2), got.Version())
}

func TestAnimalRepository_UpdateClearsOptionalFields(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")
	repo := NewGormAnimalRepository(db)

	bought := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	rex, err := animal.NewAnimal(animal.Attributes{
		Name:               "Rex",
		BirthDate:          time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		PurchaseDate:       &bought,
		PurchasePriceCents: 120050,
		Sex:                animal.SexMale,
		RegistryNumber:     "KC-1",
		BreedID:            lab.ID(),
		BreederID:          ana.ID(),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, rex))

	attrs := rex.Attributes()
	attrs.PurchaseDate = nil
	attrs.PurchasePriceCents = 0
	attrs.RegistryNumber = ""
	require.NoError(t, rex.Update(attrs))
	require.NoError(t, repo.Update(ctx, rex))

	got, err := repo.FindByID(ctx, rex.ID(), animal.Include{})
	require.NoError(t, err)
	assert.Nil(t, got.PurchaseDate())
	assert.Zero(t, got.PurchasePriceCents())
	assert.Empty(t, got.RegistryNumber())
}

func TestAnimalRepository_DeleteRemovesPhotos(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")
	repo := NewGormAnimalRepository(db)

	rex := newTestAnimal(t, "Rex", lab.ID(), ana.ID())
	rex.AttachPhoto(animal.NewStoredPhoto("a.jpg", time.Now().UTC()))
	rex.AttachPhoto(animal.NewStoredPhoto("b.png", time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, rex))

	fido := newTestAnimal(t, "Fido", lab.ID(), ana.ID())
	fido.AttachPhoto(animal.NewSentinelPhoto(time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, fido))

	require.NoError(t, repo.Delete(ctx, rex.ID()))

	photos, err := repo.FindPhotos(ctx, rex.ID())
	require.NoError(t, err)
	assert.Empty(t, photos)

	all, err := repo.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fido.ID(), all[0].AnimalID())

	err = repo.Delete(ctx, rex.ID())
	assert.True(t, domain.IsNotFound(err))
}

func TestAnimalRepository_ResetPhoto(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")
	repo := NewGormAnimalRepository(db)

	rex := newTestAnimal(t, "Rex", lab.ID(), ana.ID())
	rex.AttachPhoto(animal.NewStoredPhoto("gone.jpg", time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, rex))

	require.NoError(t, repo.ResetPhoto(ctx, rex.Photos()[0].ID()))

	photos, err := repo.FindPhotos(ctx, rex.ID())
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.True(t, photos[0].IsSentinel())
	assert.Equal(t, animal.NoPhotoLocation, photos[0].Location())

	assert.True(t, domain.IsNotFound(repo.ResetPhoto(ctx, 9999)))
}

func TestGateway_RunInTxRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()
	lab := seedBreed(t, db, "Labrador")
	ana := seedBreeder(t, db, "Ana", "ana@example.com")
	gw := NewGateway(db)

	boom := errors.New("boom")
	err := gw.RunInTx(ctx, func(s gateway.Stores) error {
		rex := newTestAnimal(t, "Rex", lab.ID(), ana.ID())
		rex.AttachPhoto(animal.NewSentinelPhoto(time.Now().UTC()))
		if err := s.Animals.Save(ctx, rex); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	animals, err := gw.Stores().Animals.List(ctx, animal.Include{})
	require.NoError(t, err)
	assert.Empty(t, animals)
	photos, err := gw.Stores().Animals.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestAnimalRepository_ForeignKeysEnforced(t *testing.T) {
	db := newTestDB(t)

	rex := newTestAnimal(t, "Rex", 77, 88)
	err := NewGormAnimalRepository(db).Save(t.Context(), rex)
	assert.Error(t, err)
}
