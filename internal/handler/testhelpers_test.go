package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/application"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/identity"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/metrics"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/photostore"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-kennel/internal/repository"
)

type nopPublisher struct{}

func (nopPublisher) PublishEvent(context.Context, string, kafka.CloudEvent) error { return nil }

type capturingNotifier struct {
	mu     sync.Mutex
	bodies []string
}

func (n *capturingNotifier) Send(_ context.Context, _, _, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bodies = append(n.bodies, body)
	return nil
}

func (n *capturingNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.bodies) == 0 {
		return ""
	}
	return n.bodies[len(n.bodies)-1]
}

type testServer struct {
	router   *gin.Engine
	jwt      *auth.JWTManager
	catalog  *application.CatalogService
	photos   *photostore.MemoryStore
	notifier *capturingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "kennel.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	require.NoError(t, identity.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zap.NewNop()
	jwtManager := auth.NewJWTManager("handler-secret", time.Hour, 24*time.Hour)
	gw := repository.NewGateway(db)
	photos := photostore.NewMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	notifier := &capturingNotifier{}

	lookup := application.NewLookupService(gw, 0, log)
	catalog := application.NewCatalogService(gw, lookup, log)
	animals := application.NewAnimalService(gw, photos, nopPublisher{}, m,
		application.AnimalServiceOptions{RejectUnsupportedPhotos: true}, log)
	directory := identity.NewDirectory(db, jwtManager, identity.Options{BcryptCost: bcrypt.MinCost}, log)
	registration := application.NewRegistrationService(directory, gw, lookup, notifier, nopPublisher{}, m,
		application.RegistrationOptions{RequireConfirmedAccount: true, PublicBaseURL: "http://kennel.test"}, log)

	r := gin.New()
	NewAnimalHandler(animals, lookup).RegisterRoutes(&r.RouterGroup, jwtManager)
	NewCatalogHandler(catalog, lookup).RegisterRoutes(&r.RouterGroup, jwtManager)
	NewRegistrationHandler(registration).RegisterRoutes(&r.RouterGroup)
	NewAdminHandler(animals, lookup).RegisterRoutes(&r.RouterGroup, jwtManager)

	return &testServer{router: r, jwt: jwtManager, catalog: catalog, photos: photos, notifier: notifier}
}

func (s *testServer) token(t *testing.T, role auth.Role) string {
	t.Helper()
	token, _, err := s.jwt.Generate(uuid.New(), string(role)+"@kennel.test", role, false)
	require.NoError(t, err)
	return token
}

func (s *testServer) seedCatalog(t *testing.T) (breedID, breederID uint) {
	t.Helper()
	b, err := s.catalog.CreateBreed(t.Context(), application.CreateBreedRequest{Name: "Labrador"})
	require.NoError(t, err)
	br, err := s.catalog.CreateBreeder(t.Context(), application.CreateBreederRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	return b.ID, br.ID
}

// do sends a request and decodes the JSON envelope.
func (s *testServer) do(t *testing.T, method, path, token, contentType string, body io.Reader) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), "body: %s", w.Body.String())
	return w.Code, decoded
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(t, method, path, token, "application/json", body)
}

func dataOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "missing data object in %v", body)
	return data
}
