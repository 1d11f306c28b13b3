//go:build integration

package main_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/account"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/animal"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/events"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/domain"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
)

// TestAnimalWorkflow_Postgres runs create, guarded breed delete and animal
// delete against the migrated PostgreSQL schema.
func TestAnimalWorkflow_Postgres(t *testing.T) {
	db := startPostgres(t)
	stack := newKennelStack(t, db, discardPublisher{})
	ctx := context.Background()

	lab, err := stack.catalog.CreateBreed(ctx, application.CreateBreedRequest{Name: "Labrador"})
	require.NoError(t, err)
	ana, err := stack.catalog.CreateBreeder(ctx, application.CreateBreederRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	created, err := stack.animals.Create(ctx, application.AnimalRequest{
		Name: "Rex", BirthDate: "2020-01-01", Sex: "M", PurchasePrice: "950.5",
		BreedID: lab.ID, BreederID: ana.ID,
	}, &application.PhotoUpload{FileName: "rex.jpg", Content: jpeg()})
	require.NoError(t, err)
	require.Len(t, created.Animal.Photos, 1)
	fileName := created.Animal.Photos[0].FileName
	assert.FileExists(t, filepath.Join(stack.photos.Root(), fileName))
	assert.Equal(t, "950.50", created.Animal.PurchasePrice)

	_, err = stack.animals.Create(ctx, application.AnimalRequest{
		Name: "Ghost", BirthDate: "2020-01-01", Sex: "F", BreedID: lab.ID, BreederID: 999,
	}, nil)
	assert.True(t, errors.Is(err, animal.ErrMissingBreeder))

	err = stack.catalog.DeleteBreed(ctx, lab.ID)
	assert.True(t, domain.IsConflict(err), "breed still referenced: %v", err)

	deleted, err := stack.animals.Delete(ctx, created.Animal.ID)
	require.NoError(t, err)
	assert.Empty(t, deleted.Warnings)
	assert.NoFileExists(t, filepath.Join(stack.photos.Root(), fileName))
	assert.Zero(t, countRows(t, db, "animals"))
	assert.Zero(t, countRows(t, db, "photos"))

	require.NoError(t, stack.catalog.DeleteBreed(ctx, lab.ID))
}

// TestRawAnimalDelete_CascadesPhotos checks the ON DELETE CASCADE in the
// migrations for deletes that bypass the service.
func TestRawAnimalDelete_CascadesPhotos(t *testing.T) {
	db := startPostgres(t)
	stack := newKennelStack(t, db, discardPublisher{})
	ctx := context.Background()

	lab, err := stack.catalog.CreateBreed(ctx, application.CreateBreedRequest{Name: "Labrador"})
	require.NoError(t, err)
	ana, err := stack.catalog.CreateBreeder(ctx, application.CreateBreederRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	created, err := stack.animals.Create(ctx, application.AnimalRequest{
		Name: "Rex", BirthDate: "2020-01-01", Sex: "M", BreedID: lab.ID, BreederID: ana.ID,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), countRows(t, db, "photos"))

	require.NoError(t, db.Exec("DELETE FROM animals WHERE id = ?", created.Animal.ID).Error)
	assert.Zero(t, countRows(t, db, "photos"))

	err = db.Exec("DELETE FROM breeders WHERE id = ?", ana.ID).Error
	assert.NoError(t, err, "breeder is unreferenced once the animal is gone")
}

// TestRegistration_Postgres provisions a breeder through the real account
// directory and confirms the one-to-one account link.
func TestRegistration_Postgres(t *testing.T) {
	db := startPostgres(t)
	stack := newKennelStack(t, db, discardPublisher{})
	log := zap.NewNop()
	ctx := context.Background()

	jwtManager := auth.NewJWTManager("integration", time.Hour, time.Hour)
	directory := identity.NewDirectory(db, jwtManager, identity.Options{BcryptCost: bcrypt.MinCost}, log)
	lookup := application.NewLookupService(stack.gw, 0, log)
	svc := application.NewRegistrationService(directory, stack.gw, lookup, notifierFunc(func(string) {}), discardPublisher{},
		metrics.New(prometheus.NewRegistry()), application.RegistrationOptions{RequireConfirmedAccount: false}, log)

	result, err := svc.Register(ctx, application.RegisterRequest{
		Email: "ana@example.com", Password: "s3cret!", ConfirmPassword: "s3cret!", Name: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, application.StateBreederLinked, result.State)
	require.NotNil(t, result.Session)

	claims, err := jwtManager.Validate(result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, result.AccountID, claims.UserID)

	_, err = svc.Register(ctx, application.RegisterRequest{
		Email: "ANA@example.com", Password: "s3cret!", ConfirmPassword: "s3cret!", Name: "Ana again",
	})
	var createErr *account.CreateError
	require.True(t, errors.As(err, &createErr))
	assert.Equal(t, account.CodeDuplicateEmail, createErr.Errors[0].Code)
	assert.Equal(t, int64(1), countRows(t, db, "breeders"))
	assert.Equal(t, int64(1), countRows(t, db, "accounts"))
}

// TestCleanupConsumer_DeletesOrphanedFile publishes an orphaned-file event to
// a real broker and waits for the consumer to remove the file.
func TestCleanupConsumer_DeletesOrphanedFile(t *testing.T) {
	brokers := startKafka(t, events.TopicCleanup)
	log := zap.NewNop()
	stack := newKennelStack(t, nil, discardPublisher{})

	fileName := uuid.NewString() + ".jpg"
	require.NoError(t, stack.photos.Save(context.Background(), fileName, jpeg()))

	producer := kafka.NewProducer(brokers, log)
	defer func() { _ = producer.Close() }()
	evt, err := kafka.NewCloudEvent(events.Source, events.PhotoFileOrphaned, fileName,
		events.PhotoFileOrphanedEvent{FileName: fileName, Reason: "integration"})
	require.NoError(t, err)
	require.NoError(t, producer.PublishEvent(context.Background(), events.TopicCleanup, evt))

	groupID := fmt.Sprintf("test-cleanup-%s", uuid.New().String()[:8])
	consumer := events.NewCleanupConsumer(brokers, groupID, stack.photos, nil, log)
	defer func() { _ = consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()

	require.Eventually(t, func() bool {
		ok, err := stack.photos.Exists(context.Background(), fileName)
		return err == nil && !ok
	}, 30*time.Second, 200*time.Millisecond, "orphaned file was not removed")
}

type notifierFunc func(body string)

func (f notifierFunc) Send(_ context.Context, _, _, body string) error {
	f(body)
	return nil
}
