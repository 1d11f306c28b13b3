package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kilat-Pet-Delivery/service-kennel/internal/platform/auth"
)

func TestTokenCommand_IssuesVerifiableToken(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KENNEL_JWT_SECRET", "cli-secret")

	var out bytes.Buffer
	root := rootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--email", "admin@kennel.test", "--role", "admin"})
	require.NoError(t, root.Execute())

	token := strings.SplitN(out.String(), "\n", 2)[0]
	claims, err := auth.NewJWTManager("cli-secret", 0, 0).Validate(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "admin@kennel.test", claims.Email)
}

func TestTokenCommand_RejectsUnknownRole(t *testing.T) {
	t.Chdir(t.TempDir())

	root := rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--email", "a@b.c", "--role", "owner"})
	assert.Error(t, root.Execute())
}

func TestSweepPhotosCommand_OnSQLite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("KENNEL_DB_DRIVER", "sqlite")
	t.Setenv("KENNEL_DB_PATH", "kennel.db")
	t.Setenv("KENNEL_PHOTO_ROOT", "images")

	var out bytes.Buffer
	root := rootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"sweep-photos"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "checked 0 photos, repaired 0")
}
