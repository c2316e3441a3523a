package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKey(t *testing.T) {
	key, err := Default().Key()
	require.NoError(t, err)
	assert.Len(t, key, SigningKeySize)
	assert.Equal(t, byte(0x8e), key[0])
}

func TestKeySize(t *testing.T) {
	c := Default()
	c.SigningKey = "AAAA"
	_, err := c.Key()
	assert.ErrorIs(t, err, ErrKeySize)

	c.SigningKey = "not base64!"
	_, err = c.Key()
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TTCODEC_APP_ID", "1233")
	t.Setenv("TTCODEC_WORKERS", "x")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c := Load()
	assert.Equal(t, "1233", c.AppID)
	assert.Equal(t, DefaultLicenseID, c.LicenseID)
	assert.Equal(t, DefaultWorkers, c.Workers)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttcodec.yml")
	require.NoError(t, os.WriteFile(path, []byte("license_id: \"1611921764\"\nworkers: 8\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1611921764", c.LicenseID)
	assert.Equal(t, DefaultAppID, c.AppID)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, DefaultSigningKey, c.SigningKey)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
