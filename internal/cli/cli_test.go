package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmark/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--user", "alice", "--ttl", "1h")
	require.NoError(t, err)

	uid, err := auth.UserIDFromToken(strings.TrimSpace(out), []byte("cli-secret"))
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
}

func TestTokenCommand_Errors(t *testing.T) {
	t.Run("missing user flag", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "cli-secret")
		_, err := execute(t, "token")
		assert.Error(t, err)
	})

	t.Run("blank user", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "cli-secret")
		_, err := execute(t, "token", "--user", "  ")
		assert.EqualError(t, err, "--user must not be blank")
	})

	t.Run("no secret", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "")
		_, err := execute(t, "token", "--user", "alice")
		assert.EqualError(t, err, "AUTH_JWT_SECRET is not set")
	})
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "")
	_, err := execute(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect:")
}
