package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)
	id := uuid.New()

	token, exp, err := m.Generate(id, "ana@example.com", RoleBreeder, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, RoleBreeder, claims.Role)
}

func TestJWTManager_PersistentUsesLongerTTL(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	_, exp, err := m.Generate(uuid.New(), "a@b.c", RoleBreeder, true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, 5*time.Second)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Hour, time.Hour).Generate(uuid.New(), "a@b.c", RoleAdmin, false)
	require.NoError(t, err)

	_, err = NewJWTManager("two", time.Hour, time.Hour).Validate(token)
	assert.Error(t, err)
}
