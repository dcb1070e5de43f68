package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectorcore/internal/blob"
	"inspectorcore/internal/kv"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "inspector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, kv.DriverSQLite, s.KV().Driver)
	assert.Equal(t, blob.DriverFilesystem, s.BlobConfig().Driver)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeSettings(t, `
storage:
  driver: badger
  badger_path: /var/lib/inspector
blob:
  driver: s3
  s3_bucket: from-file
  s3_endpoint: http://minio:9000
log:
  level: debug
catalog_path: catalog.yaml
`)
	t.Setenv("INSPECTOR_BLOB_S3_BUCKET", "from-env")
	t.Setenv("INSPECTOR_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("INSPECTOR_LOG_FORMAT", "json")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "badger", s.Storage.Driver)
	assert.Equal(t, "/var/lib/inspector", s.KV().BadgerPath)
	assert.Equal(t, "inspector.db", s.Storage.SQLitePath)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, "catalog.yaml", s.CatalogPath)

	bc := s.BlobConfig()
	assert.Equal(t, blob.DriverS3, bc.Driver)
	assert.Equal(t, "from-env", bc.S3.Bucket)
	assert.Equal(t, "http://minio:9000", bc.S3.Endpoint)
	assert.True(t, bc.S3.PathStyle)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown storage driver": {"INSPECTOR_STORAGE_DRIVER": "mongo"},
		"postgres without dsn":   {"INSPECTOR_STORAGE_DRIVER": "postgres"},
		"s3 without bucket":      {"INSPECTOR_BLOB_DRIVER": "s3"},
		"bad endpoint":           {"INSPECTOR_BLOB_S3_ENDPOINT": "::nope"},
		"bad level":              {"INSPECTOR_LOG_LEVEL": "loud"},
		"bad path style":         {"INSPECTOR_BLOB_S3_PATH_STYLE": "maybe"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read settings")

	_, err = Load(writeSettings(t, "storage: [unterminated"))
	assert.ErrorContains(t, err, "parse settings")
}

func TestValidateNamesFailingField(t *testing.T) {
	s := Default()
	s.Blob.Driver = "tape"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Settings.Blob.Driver")
	assert.Contains(t, err.Error(), "oneof")
}
