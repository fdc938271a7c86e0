// Package config loads service settings: built-in defaults, then an optional
// YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`
	SeedData bool   `yaml:"seed_data"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	CORSOrigins []string `yaml:"cors_origins"`

	Metrics MetricsConfig `yaml:"metrics"`
	Auth    AuthConfig    `yaml:"auth"`
	Upload  UploadConfig  `yaml:"upload"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type AuthConfig struct {
	Realm           string `yaml:"realm"`
	ProtectProducts bool   `yaml:"protect_products"`
	// Per-IP requests allowed on signup/signin within one minute; 0 disables.
	SignupPerMin int `yaml:"signup_per_min"`
	SigninPerMin int `yaml:"signin_per_min"`
}

type UploadConfig struct {
	Backend  string   `yaml:"backend"`
	Dir      string   `yaml:"dir"`
	MaxBytes int64    `yaml:"max_bytes"`
	S3       S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Region       string `yaml:"region"`
	BaseEndpoint string `yaml:"base_endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	// PublicURL prefixes stored object keys in product image URLs.
	PublicURL string `yaml:"public_url"`
}

func Defaults() Config {
	return Config{
		Port:            "3000",
		LogLevel:        "info",
		SeedData:        true,
		ShutdownTimeout: 10 * time.Second,
		CORSOrigins:     []string{"*"},
		Auth: AuthConfig{
			Realm:        "shop",
			SignupPerMin: 3,
			SigninPerMin: 5,
		},
		Upload: UploadConfig{
			Backend:  UploadBackendDisk,
			Dir:      "uploads",
			MaxBytes: 10 << 20,
			S3: S3Config{
				Bucket: "products",
				Region: "us-east-1",
			},
		},
	}
}

// Load returns Defaults overlaid by the YAML file at path (skipped when path
// is empty) and then by the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	var errs []error
	boolean := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
	integer := func(key string, dst *int64) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	str("PORT", &c.Port)
	str("LOG_LEVEL", &c.LogLevel)
	boolean("SEED_DATA", &c.SeedData)

	if v := getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
		} else {
			c.ShutdownTimeout = d
		}
	}

	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	boolean("METRICS_ENABLED", &c.Metrics.Enabled)
	str("METRICS_TOKEN", &c.Metrics.Token)

	str("AUTH_REALM", &c.Auth.Realm)
	boolean("PROTECT_PRODUCTS", &c.Auth.ProtectProducts)

	str("UPLOAD_BACKEND", &c.Upload.Backend)
	str("UPLOAD_DIR", &c.Upload.Dir)
	integer("UPLOAD_MAX_BYTES", &c.Upload.MaxBytes)

	str("S3_BUCKET", &c.Upload.S3.Bucket)
	str("S3_REGION", &c.Upload.S3.Region)
	str("S3_BASE_ENDPOINT", &c.Upload.S3.BaseEndpoint)
	str("S3_ACCESS_KEY", &c.Upload.S3.AccessKey)
	str("S3_SECRET_KEY", &c.Upload.S3.SecretKey)
	str("S3_PUBLIC_URL", &c.Upload.S3.PublicURL)

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}
	if c.Auth.SignupPerMin < 0 || c.Auth.SigninPerMin < 0 {
		errs = append(errs, errors.New("auth rate limits must not be negative"))
	}

	switch c.Upload.Backend {
	case UploadBackendDisk:
		if c.Upload.Dir == "" {
			errs = append(errs, errors.New("upload.dir is required for disk backend"))
		}
	case UploadBackendS3:
		if c.Upload.S3.Bucket == "" {
			errs = append(errs, errors.New("upload.s3.bucket is required for s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown upload backend %q", c.Upload.Backend))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
