package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jask/baydesk/internal/secrets"
)

func withConfig(t *testing.T, body string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	path := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("BAYDESK_CONFIG", path)
	t.Setenv("BAYDESK_LOG_FILE", filepath.Join(home, "baydesk.log"))
	t.Setenv("BAYDESK_DATABASE_PATH", filepath.Join(home, "data", "baydesk.db"))
	return home
}

const brokenAPI = `
[api]
environment = "nowhere"
`

func TestTokenSetIgnoresBrokenAPISection(t *testing.T) {
	keyring.MockInit()
	withConfig(t, brokenAPI)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &env{}, []string{"token", "set", " tok-1 "}, &out))
	assert.Contains(t, out.String(), `"default"`)

	tok, err := secrets.Store{}.FetchToken("default")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	out.Reset()
	require.NoError(t, run(context.Background(), &env{}, []string{"token", "clear"}, &out))
	_, err = secrets.Store{}.FetchToken("default")
	require.ErrorIs(t, err, secrets.ErrNotFound)
}

func TestOtherCommandsStillValidateConfig(t *testing.T) {
	withConfig(t, brokenAPI)
	err := run(context.Background(), &env{}, []string{"migrate"}, &bytes.Buffer{})
	require.ErrorContains(t, err, `"nowhere"`)
}

func TestMigrateReportsVersion(t *testing.T) {
	withConfig(t, "")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &env{}, []string{"migrate"}, &out))
	assert.Contains(t, out.String(), "at version 1")
}

func TestFailedCommandStillClosesLog(t *testing.T) {
	withConfig(t, "")
	e := &env{}
	err := run(context.Background(), e, []string{"reset-local"}, &bytes.Buffer{})
	require.ErrorContains(t, err, "--yes")
	assert.NotNil(t, e.log, "setup ran")
	assert.Nil(t, e.closer, "closed after the failing command")
}
