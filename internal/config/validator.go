package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// MinJWTSecretLength matches the check auth.NewTokenService performs.
const MinJWTSecretLength = 16

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // config key, e.g. "store.driver"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func ValidStoreDrivers() []string   { return []string{"sqlite", "badger", "mongo"} }
func ValidStorageDrivers() []string { return []string{"disk", "cloudinary", "none"} }
func ValidLogLevels() []string      { return []string{"debug", "info", "warn", "error"} }
func ValidLogFormats() []string     { return []string{"text", "json"} }

// Validate checks the Config and returns every problem found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateStore()...)
	errs = append(errs, c.validateAuth()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateAI()...)
	errs = append(errs, c.validateLog()...)
	if c.Cache.MaxCost < 0 {
		errs = append(errs, ValidationError{"cache.max_cost", c.Cache.MaxCost, "must not be negative"})
	}
	return errs
}

func (c *Config) validateServer() []ValidationError {
	var errs []ValidationError
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{"server.port", c.Server.Port, "must be between 1 and 65535"})
	}
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{"server.base_url", c.Server.BaseURL, "must be an absolute URL"})
	}
	return errs
}

func (c *Config) validateStore() []ValidationError {
	s := c.Store
	if !slices.Contains(ValidStoreDrivers(), s.Driver) {
		return []ValidationError{{"store.driver", s.Driver, "must be one of " + strings.Join(ValidStoreDrivers(), ", ")}}
	}

	var errs []ValidationError
	switch s.Driver {
	case "sqlite":
		if s.SQLitePath == "" {
			errs = append(errs, ValidationError{"store.sqlite_path", s.SQLitePath, "is required for the sqlite driver"})
		}
	case "badger":
		if s.BadgerDir == "" {
			errs = append(errs, ValidationError{"store.badger_dir", s.BadgerDir, "is required for the badger driver"})
		}
	case "mongo":
		if !strings.HasPrefix(s.MongoURI, "mongodb://") && !strings.HasPrefix(s.MongoURI, "mongodb+srv://") {
			errs = append(errs, ValidationError{"store.mongo_uri", s.MongoURI, "must start with mongodb:// or mongodb+srv://"})
		}
		if s.MongoDatabase == "" {
			errs = append(errs, ValidationError{"store.mongo_database", s.MongoDatabase, "is required for the mongo driver"})
		}
	}
	return errs
}

func (c *Config) validateAuth() []ValidationError {
	var errs []ValidationError
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		// The secret itself is never echoed back.
		errs = append(errs, ValidationError{"auth.jwt_secret", fmt.Sprintf("%d characters", len(c.Auth.JWTSecret)),
			fmt.Sprintf("must be at least %d characters", MinJWTSecretLength)})
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, ValidationError{"auth.token_ttl", c.Auth.TokenTTL, "must be positive"})
	}
	if (c.Auth.GitHubClientID == "") != (c.Auth.GitHubClientSecret == "") {
		errs = append(errs, ValidationError{"auth.github_client_secret", "", "github_client_id and github_client_secret must be set together"})
	}
	return errs
}

func (c *Config) validateStorage() []ValidationError {
	s := c.Storage
	if !slices.Contains(ValidStorageDrivers(), s.Driver) {
		return []ValidationError{{"storage.driver", s.Driver, "must be one of " + strings.Join(ValidStorageDrivers(), ", ")}}
	}

	var errs []ValidationError
	switch s.Driver {
	case "disk":
		if s.UploadDir == "" {
			errs = append(errs, ValidationError{"storage.upload_dir", s.UploadDir, "is required for the disk driver"})
		}
		if !strings.HasPrefix(s.PublicPath, "/") || s.PublicPath == "/" || strings.HasPrefix(s.PublicPath, "/static") {
			errs = append(errs, ValidationError{"storage.public_path", s.PublicPath, "must be a URL path such as /uploads"})
		}
	case "cloudinary":
		if !strings.HasPrefix(s.CloudinaryURL, "cloudinary://") {
			errs = append(errs, ValidationError{"storage.cloudinary_url", "", "must be a cloudinary:// URL"})
		}
	}
	return errs
}

func (c *Config) validateAI() []ValidationError {
	var errs []ValidationError
	if c.AI.Timeout <= 0 {
		errs = append(errs, ValidationError{"ai.timeout", c.AI.Timeout, "must be positive"})
	}
	if c.AI.RequestsPerMinute < 1 {
		errs = append(errs, ValidationError{"ai.requests_per_minute", c.AI.RequestsPerMinute, "must be at least 1"})
	}
	if c.AI.Burst < 1 {
		errs = append(errs, ValidationError{"ai.burst", c.AI.Burst, "must be at least 1"})
	}
	if c.AI.Model == "" {
		errs = append(errs, ValidationError{"ai.model", c.AI.Model, "is required"})
	}
	return errs
}

func (c *Config) validateLog() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidLogLevels(), c.Log.Level) {
		errs = append(errs, ValidationError{"log.level", c.Log.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}
	if !slices.Contains(ValidLogFormats(), c.Log.Format) {
		errs = append(errs, ValidationError{"log.format", c.Log.Format, "must be one of " + strings.Join(ValidLogFormats(), ", ")})
	}
	return errs
}
