// Package config loads Bloom's settings from defaults, an optional YAML
// file, a .env file and BLOOM_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BLOOM_SERVER_PORT
// for server.port.
const EnvPrefix = "BLOOM"

// Config is the complete Bloom configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Storage StorageConfig `mapstructure:"storage"`
	AI      AIConfig      `mapstructure:"ai"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// BaseURL is the public origin, used to derive the OAuth callback.
	BaseURL string `mapstructure:"base_url"`
	// SecureCookies sets the Secure flag on session cookies. Enable behind HTTPS.
	SecureCookies bool `mapstructure:"secure_cookies"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	// Driver is one of "sqlite", "badger", "mongo".
	Driver        string `mapstructure:"driver"`
	SQLitePath    string `mapstructure:"sqlite_path"`
	BadgerDir     string `mapstructure:"badger_dir"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
}

type AuthConfig struct {
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	GitHubClientID     string        `mapstructure:"github_client_id"`
	GitHubClientSecret string        `mapstructure:"github_client_secret"`
	// GitHubCallbackURL defaults to <base_url>/auth/github/callback.
	GitHubCallbackURL string `mapstructure:"github_callback_url"`
}

// GitHubEnabled reports whether the GitHub sign-in routes can be served.
func (a AuthConfig) GitHubEnabled() bool {
	return a.GitHubClientID != "" && a.GitHubClientSecret != ""
}

// StorageConfig selects where post images go.
type StorageConfig struct {
	// Driver is one of "disk", "cloudinary", "none". With "none" posts are
	// text-only.
	Driver           string `mapstructure:"driver"`
	UploadDir        string `mapstructure:"upload_dir"`
	PublicPath       string `mapstructure:"public_path"`
	CloudinaryURL    string `mapstructure:"cloudinary_url"`
	CloudinaryFolder string `mapstructure:"cloudinary_folder"`
}

// AIConfig points the suggestion flow at an OpenAI-compatible endpoint.
type AIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
}

type CacheConfig struct {
	// MaxCost is the page cache budget in bytes. Zero disables the cache.
	MaxCost int64 `mapstructure:"max_cost"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// Default returns a Config with working local defaults: SQLite in ./data,
// images on disk, GitHub sign-in off.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Store: StoreConfig{
			Driver:        "sqlite",
			SQLitePath:    "data/bloom.db",
			BadgerDir:     "data/badger",
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "bloom",
		},
		Auth: AuthConfig{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver:           "disk",
			UploadDir:        "data/uploads",
			PublicPath:       "/uploads",
			CloudinaryFolder: "bloom",
		},
		AI: AIConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           30 * time.Second,
			RequestsPerMinute: 10,
			Burst:             3,
		},
		Cache: CacheConfig{
			MaxCost: 32 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every key of Default with v so that environment
// variables are picked up by Unmarshal even when no config file sets them.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.base_url", d.Server.BaseURL)
	v.SetDefault("server.secure_cookies", d.Server.SecureCookies)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("store.badger_dir", d.Store.BadgerDir)
	v.SetDefault("store.mongo_uri", d.Store.MongoURI)
	v.SetDefault("store.mongo_database", d.Store.MongoDatabase)

	v.SetDefault("auth.jwt_secret", d.Auth.JWTSecret)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("auth.github_client_id", d.Auth.GitHubClientID)
	v.SetDefault("auth.github_client_secret", d.Auth.GitHubClientSecret)
	v.SetDefault("auth.github_callback_url", d.Auth.GitHubCallbackURL)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.upload_dir", d.Storage.UploadDir)
	v.SetDefault("storage.public_path", d.Storage.PublicPath)
	v.SetDefault("storage.cloudinary_url", d.Storage.CloudinaryURL)
	v.SetDefault("storage.cloudinary_folder", d.Storage.CloudinaryFolder)

	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.api_key", d.AI.APIKey)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("ai.requests_per_minute", d.AI.RequestsPerMinute)
	v.SetDefault("ai.burst", d.AI.Burst)

	v.SetDefault("cache.max_cost", d.Cache.MaxCost)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Init prepares v: defaults, .env, environment binding and the config file.
// cfgFile may be empty, in which case ./bloom.yaml is read when present.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: loading .env: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
		return nil
	}

	v.SetConfigName("bloom")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: reading bloom.yaml: %w", err)
		}
	}
	return nil
}

// Load reads the configuration from v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if cfg.Auth.GitHubCallbackURL == "" {
		cfg.Auth.GitHubCallbackURL = strings.TrimSuffix(cfg.Server.BaseURL, "/") + "/auth/github/callback"
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
