// Package config loads inspectorctl settings from an optional YAML file and
// INSPECTOR_* environment variables, in that order, and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"inspectorcore/internal/blob"
	"inspectorcore/internal/kv"
	"inspectorcore/pkg/domain"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "INSPECTOR_"

// Settings is the full runtime configuration.
type Settings struct {
	Storage     StorageSettings `yaml:"storage"`
	Blob        BlobSettings    `yaml:"blob"`
	Log         LogSettings     `yaml:"log"`
	CatalogPath string          `yaml:"catalog_path"`
}

// StorageSettings selects the backing store drafts and reports are kept in.
type StorageSettings struct {
	Driver      string `yaml:"driver" validate:"oneof=memory sqlite postgres badger"`
	SQLitePath  string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
	PostgresDSN string `yaml:"postgres_dsn" validate:"required_if=Driver postgres"`
	// BadgerPath empty runs badger in memory.
	BadgerPath string `yaml:"badger_path"`
}

// BlobSettings selects where archives are written.
type BlobSettings struct {
	Driver      string `yaml:"driver" validate:"oneof=fs s3 memory"`
	FSRoot      string `yaml:"fs_root" validate:"required_if=Driver fs"`
	S3Bucket    string `yaml:"s3_bucket" validate:"required_if=Driver s3"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" validate:"omitempty,url"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// LogSettings configures internal/logging.
type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Storage: StorageSettings{Driver: "sqlite", SQLitePath: "inspector.db"},
		Blob:    BlobSettings{Driver: "fs", FSRoot: "./blobdata"},
		Log:     LogSettings{Level: "info", Format: "text"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds settings from defaults, then the YAML file at path (skipped
// when path is empty), then the environment.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		// #nosec G304 -- the settings path is chosen by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("read settings: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}
	if err := s.applyEnv(os.LookupEnv); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"STORAGE_DRIVER":   &s.Storage.Driver,
		"SQLITE_PATH":      &s.Storage.SQLitePath,
		"POSTGRES_DSN":     &s.Storage.PostgresDSN,
		"BADGER_PATH":      &s.Storage.BadgerPath,
		"BLOB_DRIVER":      &s.Blob.Driver,
		"BLOB_FS_ROOT":     &s.Blob.FSRoot,
		"BLOB_S3_BUCKET":   &s.Blob.S3Bucket,
		"BLOB_S3_REGION":   &s.Blob.S3Region,
		"BLOB_S3_ENDPOINT": &s.Blob.S3Endpoint,
		"LOG_LEVEL":        &s.Log.Level,
		"LOG_FORMAT":       &s.Log.Format,
		"CATALOG_PATH":     &s.CatalogPath,
	}
	for name, dst := range str {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvPrefix + "BLOB_S3_PATH_STYLE"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sBLOB_S3_PATH_STYLE: %w", EnvPrefix, err)
		}
		s.Blob.S3PathStyle = b
	}
	return nil
}

// Validate checks the settings against their struct tags.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (value %q)", fe.Namespace(), fe.Tag(), fmt.Sprint(fe.Value())))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

// KV returns the backing-store configuration.
func (s Settings) KV() kv.Config {
	return kv.Config{
		Driver:      domain.Driver(s.Storage.Driver),
		SQLitePath:  s.Storage.SQLitePath,
		PostgresDSN: s.Storage.PostgresDSN,
		BadgerPath:  s.Storage.BadgerPath,
	}
}

// BlobConfig returns the archive blob-store configuration. S3 credentials
// come from the default AWS chain.
func (s Settings) BlobConfig() blob.Config {
	return blob.Config{
		Driver: blob.Driver(s.Blob.Driver),
		FSRoot: s.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:    s.Blob.S3Bucket,
			Region:    s.Blob.S3Region,
			Endpoint:  s.Blob.S3Endpoint,
			PathStyle: s.Blob.S3PathStyle,
		},
	}
}
