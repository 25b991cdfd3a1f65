// Package config loads application configuration from environment variables
// and an optional config file.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every configuration key when read from the
// environment, e.g. AUTOREVIEW_LISTEN_ADDR.
const EnvPrefix = "AUTOREVIEW"

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreSQLite    = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr string `mapstructure:"listen_addr" validate:"required,hostname_port"`
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`

	GitHubClientID     string `mapstructure:"github_client_id" validate:"required"`
	GitHubClientSecret string `mapstructure:"github_client_secret" validate:"required"`

	SessionSecret string `mapstructure:"session_secret" validate:"required,min=32"`
	SecretKey     string `mapstructure:"secret_key" validate:"required,len=64,hexadecimal"`

	Store               string `mapstructure:"store" validate:"oneof=firestore sqlite"`
	DBPath              string `mapstructure:"db_path" validate:"required_if=Store sqlite"`
	FirebaseProjectID   string `mapstructure:"firebase_project_id" validate:"required_if=Store firestore"`
	FirebaseCredentials string `mapstructure:"firebase_credentials_file" validate:"omitempty,file"`
	FirestoreCollection string `mapstructure:"firestore_collection" validate:"required"`

	CloudLogging  bool   `mapstructure:"cloud_logging"`
	LogLevel      string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat     string `mapstructure:"log_format" validate:"oneof=text json"`
	SecureCookies bool   `mapstructure:"secure_cookies"`
}

var defaults = map[string]any{
	"listen_addr":               "127.0.0.1:8080",
	"base_url":                  "http://127.0.0.1:8080",
	"github_client_id":          "",
	"github_client_secret":      "",
	"session_secret":            "",
	"secret_key":                "",
	"store":                     StoreFirestore,
	"db_path":                   "autoreview.db",
	"firebase_project_id":       "",
	"firebase_credentials_file": "",
	"firestore_collection":      "repositories",
	"cloud_logging":             false,
	"log_level":                 "info",
	"log_format":                "text",
	"secure_cookies":            false,
}

// Load reads configuration from AUTOREVIEW_* environment variables, layered
// over the file at path when path is non-empty, and returns a validated Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, describe(err)
	}

	return &cfg, nil
}

// TokenKey returns the decoded 32-byte key used to encrypt the GitHub token cookie.
func (c *Config) TokenKey() ([]byte, error) {
	key, err := hex.DecodeString(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("%s_SECRET_KEY: %w", EnvPrefix, err)
	}
	return key, nil
}

// UsesFirestore reports whether preferences and identities live in Firebase.
func (c *Config) UsesFirestore() bool {
	return c.Store == StoreFirestore
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// describe turns validator field errors into messages that name the
// environment variable an operator has to set.
func describe(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s_%s failed %q", EnvPrefix, envName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

var envNames = map[string]string{
	"ListenAddr":          "LISTEN_ADDR",
	"BaseURL":             "BASE_URL",
	"GitHubClientID":      "GITHUB_CLIENT_ID",
	"GitHubClientSecret":  "GITHUB_CLIENT_SECRET",
	"SessionSecret":       "SESSION_SECRET",
	"SecretKey":           "SECRET_KEY",
	"Store":               "STORE",
	"DBPath":              "DB_PATH",
	"FirebaseProjectID":   "FIREBASE_PROJECT_ID",
	"FirebaseCredentials": "FIREBASE_CREDENTIALS_FILE",
	"FirestoreCollection": "FIRESTORE_COLLECTION",
	"LogLevel":            "LOG_LEVEL",
	"LogFormat":           "LOG_FORMAT",
}

func envName(field string) string {
	if name, ok := envNames[field]; ok {
		return name
	}
	return strings.ToUpper(field)
}
