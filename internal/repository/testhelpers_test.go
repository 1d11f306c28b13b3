package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breed"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/breeder"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "kennel.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedBreed(t *testing.T, db *gorm.DB, name string) *breed.Breed {
	t.Helper()
	b, err := breed.NewBreed(name)
	require.NoError(t, err)
	require.NoError(t, NewGormBreedRepository(db).Save(t.Context(), b))
	return b
}

func seedBreeder(t *testing.T, db *gorm.DB, name, email string) *breeder.Breeder {
	t.Helper()
	b, err := breeder.NewBreeder(name, email)
	require.NoError(t, err)
	require.NoError(t, NewGormBreederRepository(db).Save(t.Context(), b))
	return b
}

func newTestAnimal(t *testing.T, name string, breedID, breederID uint) *animal.Animal {
	t.Helper()
	a, err := animal.NewAnimal(animal.Attributes{
		Name:      name,
		BirthDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Sex:       animal.SexMale,
		BreedID:   breedID,
		BreederID: breederID,
	})
	require.NoError(t, err)
	return a
}
