package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Storage  StorageConfig     `yaml:"storage"`
	Dataset  DatasetConfig     `yaml:"dataset"`
	Matching MatchingConfig    `yaml:"matching"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig holds the upload root and the artifact index database path.
// Résumés and job descriptions live in separate folders under the root so
// content-hash uniqueness is scoped per document role.
type StorageConfig struct {
	UploadDir string `yaml:"upload_dir"`
	IndexPath string `yaml:"index_path"`
}

// ResumeDir returns the résumé artifact folder.
func (c *StorageConfig) ResumeDir() string {
	return filepath.Join(c.UploadDir, "resumes")
}

// JDDir returns the job-description artifact folder.
func (c *StorageConfig) JDDir() string {
	return filepath.Join(c.UploadDir, "job_descriptions")
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.UploadDir, validation.Required),
		validation.Field(&c.IndexPath, validation.Required),
	)
}

// DatasetConfig holds the comparison ledger and audit log paths.
type DatasetConfig struct {
	Path     string `yaml:"path"`
	AuditLog string `yaml:"audit_log"`
}

// Validate validates the dataset configuration.
func (c *DatasetConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.AuditLog, validation.Required),
	)
}

// MatchingConfig holds skill-extraction configuration.
//
// DictionaryPath optionally points to a YAML skill dictionary that replaces
// the built-in one (canonical skill -> list of surface-form aliases).
type MatchingConfig struct {
	DictionaryPath string `yaml:"dictionary_path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:        8000,
				CORSOrigins: []string{"http://localhost:5173"},
			},
		},
		Storage: StorageConfig{
			UploadDir: "./uploaded_files",
			IndexPath: "./mannaz.db",
		},
		Dataset: DatasetConfig{
			Path:     "./dataset.csv",
			AuditLog: "./logs.txt",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
