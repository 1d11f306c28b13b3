//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

// startPostgres runs PostgreSQL, applies the SQL migrations and returns a
// connected GORM DB.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("kennel_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := database.Config{
		Driver: database.DriverPostgres,
		Postgres: database.PostgresConfig{
			Host:     host,
			Port:     port.Port(),
			User:     "test",
			Password: "test",
			DBName:   "kennel_test",
			SSLMode:  "disable",
		},
	}
	log := zap.NewNop()
	require.NoError(t, database.RunMigrations(cfg.Postgres.DatabaseURL(), "migrations", log))

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = database.Open(cfg, log)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")
	return db
}

// startKafka runs a single-node broker with the given topics created.
func startKafka(t *testing.T, topics ...string) []string {
	t.Helper()
	ctx := context.Background()

	ctr, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")
	createTopics(t, brokers, topics...)
	return brokers
}

// createTopics pre-creates topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	}
	require.NoError(t, controllerConn.CreateTopics(configs...), "failed to create Kafka topics")

	time.Sleep(time.Second)
}

type discardPublisher struct{}

func (discardPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

// kennelStack wires the services against db and an FS photo store.
type kennelStack struct {
	gw      *repository.Gateway
	photos  *photostore.FSStore
	catalog *application.CatalogService
	animals *application.AnimalService
}

func newKennelStack(t *testing.T, db *gorm.DB, publisher application.EventPublisher) *kennelStack {
	t.Helper()
	log := zap.NewNop()
	photos := photostore.NewFSStore(t.TempDir())
	require.NoError(t, photos.EnsureDirectory(context.Background()))

	gw := repository.NewGateway(db)
	lookup := application.NewLookupService(gw, 0, log)
	return &kennelStack{
		gw:      gw,
		photos:  photos,
		catalog: application.NewCatalogService(gw, lookup, log),
		animals: application.NewAnimalService(gw, photos, publisher, metrics.New(prometheus.NewRegistry()),
			application.AnimalServiceOptions{RejectUnsupportedPhotos: true}, log),
	}
}

func jpeg() *strings.Reader {
	return strings.NewReader("\xff\xd8\xff\xe0\x00\x10JFIF\x00" + strings.Repeat("\x01", 64))
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
