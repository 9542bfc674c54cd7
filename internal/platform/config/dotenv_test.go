package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DMASSIST_TEST_LOCALE=pt-BR\nDMASSIST_TEST_KEEP=file\n"), 0o600))

	t.Setenv("DMASSIST_TEST_KEEP", "env")
	t.Setenv("DMASSIST_TEST_LOCALE", "")
	require.NoError(t, os.Unsetenv("DMASSIST_TEST_LOCALE"))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "pt-BR", os.Getenv("DMASSIST_TEST_LOCALE"))
	assert.Equal(t, "env", os.Getenv("DMASSIST_TEST_KEEP"))
}

func TestLoadDotEnvMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("BROKEN=\"unterminated\n"), 0o600))

	require.Error(t, LoadDotEnv(path))
}
