package application

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/domain/gateway"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	Topic string
	Event kafka.CloudEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic string, evt kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Event: evt})
	return nil
}

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, to, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// failingTxGateway fails every transaction with err.
type failingTxGateway struct {
	gateway.Gateway
	err error
}

func (g failingTxGateway) RunInTx(context.Context, func(gateway.Stores) error) error {
	return g.err
}

type testEnv struct {
	db        *gorm.DB
	gw        *repository.Gateway
	photos    *photostore.MemoryStore
	publisher *fakePublisher
	metrics   *metrics.Metrics
	lookup    *LookupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "kennel.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	gw := repository.NewGateway(db)
	return &testEnv{
		db:        db,
		gw:        gw,
		photos:    photostore.NewMemoryStore(),
		publisher: &fakePublisher{},
		metrics:   metrics.New(prometheus.NewRegistry()),
		lookup:    NewLookupService(gw, 0, zap.NewNop()),
	}
}

func (e *testEnv) animalService(opts AnimalServiceOptions) *AnimalService {
	return NewAnimalService(e.gw, e.photos, e.publisher, e.metrics, opts, zap.NewNop())
}

func (e *testEnv) catalogService() *CatalogService {
	return NewCatalogService(e.gw, e.lookup, zap.NewNop())
}

func (e *testEnv) seedBreed(t *testing.T, name string) *BreedDTO {
	t.Helper()
	b, err := e.catalogService().CreateBreed(t.Context(), CreateBreedRequest{Name: name})
	require.NoError(t, err)
	return b
}

func (e *testEnv) seedBreeder(t *testing.T, name, email string) *BreederDTO {
	t.Helper()
	b, err := e.catalogService().CreateBreeder(t.Context(), CreateBreederRequest{Name: name, Email: email})
	require.NoError(t, err)
	return b
}

func (e *testEnv) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
