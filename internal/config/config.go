package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the fallback YAML config location.
const DefaultConfigPath = "config.yaml"

// Load reads the YAML config file, applies environment overrides, fills in
// defaults and validates. A missing file is not an error; env-only setups are
// supported on hosted platforms.
func Load(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// env-only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	setString(&cfg.Env, "POSTCRAFT_ENV")
	setInt(&cfg.Port, "PORT")
	setString(&cfg.PublicBaseURL, "PUBLIC_BASE_URL")
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		cfg.AllowedOrigins = splitAndTrim(v)
	}

	setString(&cfg.Mongo.URI, "MONGO_URI")
	setString(&cfg.Mongo.Database, "MONGO_DATABASE")
	setString(&cfg.Redis.URL, "REDIS_URL")

	setString(&cfg.Auth.Secret, "JWT_SECRET")

	setString(&cfg.Storage.Backend, "STORAGE_BACKEND")
	setString(&cfg.Storage.S3.Bucket, "S3_BUCKET")
	setString(&cfg.Storage.S3.Region, "S3_REGION")
	setString(&cfg.Storage.S3.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Storage.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	setString(&cfg.Storage.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.S3.CustomDomain, "S3_CUSTOM_DOMAIN")

	setString(&cfg.AI.Provider.Type, "AI_PROVIDER")
	setString(&cfg.AI.Provider.APIKey, "AI_API_KEY")
	setString(&cfg.AI.Provider.Endpoint, "AI_ENDPOINT")
	setString(&cfg.AI.Provider.Model, "AI_MODEL")
	if cfg.AI.Provider.APIKey != "" {
		cfg.AI.Enable = true
	}

	setString(&cfg.Stripe.SecretKey, "STRIPE_SECRET_KEY")

	setString(&cfg.Facebook.AppID, "FACEBOOK_APP_ID")
	setString(&cfg.Facebook.AppSecret, "FACEBOOK_APP_SECRET")
	setString(&cfg.Facebook.RedirectURI, "FACEBOOK_REDIRECT_URI")
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Env == "" {
		cfg.Env = "production"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "postcraft"
	}
	if cfg.Redis.URL == "" {
		cfg.Redis.URL = "redis://localhost:6379/0"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Upload.MaxSizeMB <= 0 {
		cfg.Upload.MaxSizeMB = 20
	}
	if cfg.Upload.JPEGQuality <= 0 || cfg.Upload.JPEGQuality > 100 {
		cfg.Upload.JPEGQuality = 85
	}
	if cfg.Upload.MaxDimension <= 0 {
		cfg.Upload.MaxDimension = 2048
	}
	if cfg.Upload.ThumbnailMaxPx <= 0 {
		cfg.Upload.ThumbnailMaxPx = 150
	}
	if cfg.Upload.ThumbnailQuality <= 0 || cfg.Upload.ThumbnailQuality > 100 {
		cfg.Upload.ThumbnailQuality = 60
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "gridfs"
	}
	if cfg.Facebook.GraphVersion == "" {
		cfg.Facebook.GraphVersion = "v21.0"
	}
	if cfg.Retention.PostMonths <= 0 {
		cfg.Retention.PostMonths = 6
	}
	if cfg.Retention.VerifyInterval <= 0 {
		cfg.Retention.VerifyInterval = 6 * time.Hour
	}
	if cfg.Retention.VerifyStaleThreshold <= 0 {
		cfg.Retention.VerifyStaleThreshold = 24 * time.Hour
	}
	if cfg.Log.MaxSizeMB <= 0 {
		cfg.Log.MaxSizeMB = 100
	}
	if cfg.Log.MaxBackups <= 0 {
		cfg.Log.MaxBackups = 7
	}
	if cfg.Log.MaxAgeDays <= 0 {
		cfg.Log.MaxAgeDays = 30
	}
}

func validate(cfg *AppConfig) error {
	if cfg.Storage.Backend != "gridfs" && cfg.Storage.Backend != "s3" {
		return fmt.Errorf("storage.backend must be gridfs or s3, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Backend == "s3" {
		s3 := cfg.Storage.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3 requires bucket, region, access_key_id and secret_access_key")
		}
	}
	if cfg.Auth.Secret == "" && !cfg.IsDev() {
		return fmt.Errorf("auth.secret (JWT_SECRET) is required outside development")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
