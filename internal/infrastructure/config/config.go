package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the YAML file when no path is given.
const DefaultPath = "configs/app.yaml"

type TLSConfig struct {
	CertFile string `yaml:"cert_file" env:"TLS_CERT_FILE"`
	KeyFile  string `yaml:"key_file" env:"TLS_KEY_FILE"`
}

// Enabled reports whether both halves of the key pair are configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

type ServerConfig struct {
	Host string    `yaml:"host" env:"SERVER_HOST"`
	Port int       `yaml:"port" env:"SERVER_PORT"`
	TLS  TLSConfig `yaml:"tls"`
	// DisableHTTPSRedirect serves plain HTTP without bouncing to https.
	DisableHTTPSRedirect bool          `yaml:"disable_https_redirect" env:"DISABLE_HTTPS_REDIRECT"`
	ShutdownTimeout      time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	StaticDir            string        `yaml:"static_dir" env:"STATIC_DIR"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AppwriteConfig addresses the backend project, its collections and bucket.
type AppwriteConfig struct {
	Endpoint             string        `yaml:"endpoint" env:"APPWRITE_ENDPOINT"`
	ProjectID            string        `yaml:"project_id" env:"APPWRITE_PROJECT"`
	APIKey               string        `yaml:"api_key" env:"APPWRITE_KEY"`
	DatabaseID           string        `yaml:"database_id" env:"APPWRITE_DATABASE"`
	UsersCollectionID    string        `yaml:"users_collection_id" env:"APPWRITE_USERS_COLLECTION"`
	FilesCollectionID    string        `yaml:"files_collection_id" env:"APPWRITE_FILES_COLLECTION"`
	BucketID             string        `yaml:"bucket_id" env:"APPWRITE_BUCKET"`
	RequestTimeout       time.Duration `yaml:"request_timeout" env:"APPWRITE_REQUEST_TIMEOUT"`
	AvatarPlaceholderURL string        `yaml:"avatar_placeholder_url" env:"AVATAR_PLACEHOLDER_URL"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Database string `yaml:"database" env:"DB_PATH"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
	// Secret seeds the cookie signing and encryption keys. Empty means
	// random keys per process, which logs everyone out on restart.
	Secret string `yaml:"secret" env:"SESSION_SECRET"`
}

type UploadsConfig struct {
	MaxFileSize  int64 `yaml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE"`
	Concurrency  int   `yaml:"concurrency" env:"UPLOAD_CONCURRENCY"`
	StorageQuota int64 `yaml:"storage_quota" env:"STORAGE_QUOTA"`
	// MaxRequestSize bounds one multipart upload request carrying several files.
	MaxRequestSize int64 `yaml:"max_request_size" env:"UPLOAD_MAX_REQUEST_SIZE"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name" env:"OTEL_SERVICE_NAME"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_ENDPOINT"`
}

type ApplicationConfig struct {
	Version string `yaml:"version" env:"APP_VERSION"`
}

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Appwrite    AppwriteConfig    `yaml:"appwrite"`
	Database    DatabaseConfig    `yaml:"database"`
	Session     SessionConfig     `yaml:"session"`
	Uploads     UploadsConfig     `yaml:"uploads"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Application ApplicationConfig `yaml:"application"`
}

// Default returns a config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8443,
			ShutdownTimeout: 30 * time.Second,
			StaticDir:       "static",
		},
		Appwrite: AppwriteConfig{
			Endpoint:             "https://cloud.appwrite.io/v1",
			RequestTimeout:       60 * time.Second,
			AvatarPlaceholderURL: "https://img.freepik.com/free-psd/3d-illustration-person-with-sunglasses_23-2149436188.jpg",
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Database: "data/store-it.db",
		},
		Session: SessionConfig{
			CookieName: "appwrite-session",
		},
		Uploads: UploadsConfig{
			MaxFileSize:    50 * 1024 * 1024,
			Concurrency:    4,
			StorageQuota:   2 * 1024 * 1024 * 1024,
			MaxRequestSize: 512 * 1024 * 1024,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "store-it",
		},
		Application: ApplicationConfig{
			Version: "v1.0.0",
		},
	}
}

// Load reads the YAML file at path (DefaultPath when empty) over the defaults
// and then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Appwrite.Endpoint = strings.TrimRight(cfg.Appwrite.Endpoint, "/")
	return cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		name, value string
	}{
		{"appwrite.endpoint", c.Appwrite.Endpoint},
		{"appwrite.project_id", c.Appwrite.ProjectID},
		{"appwrite.api_key", c.Appwrite.APIKey},
		{"appwrite.database_id", c.Appwrite.DatabaseID},
		{"appwrite.users_collection_id", c.Appwrite.UsersCollectionID},
		{"appwrite.files_collection_id", c.Appwrite.FilesCollectionID},
		{"appwrite.bucket_id", c.Appwrite.BucketID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Uploads.MaxFileSize <= 0 {
		errs = append(errs, errors.New("uploads.max_file_size must be positive"))
	}
	if c.Uploads.Concurrency <= 0 {
		errs = append(errs, errors.New("uploads.concurrency must be positive"))
	}
	if c.Uploads.MaxRequestSize < c.Uploads.MaxFileSize {
		errs = append(errs, errors.New("uploads.max_request_size must be at least uploads.max_file_size"))
	}
	if c.Uploads.StorageQuota <= 0 {
		errs = append(errs, errors.New("uploads.storage_quota must be positive"))
	}
	return errors.Join(errs...)
}
