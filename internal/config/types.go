package config

import "time"

// AppConfig is the process-wide configuration, read once at startup.
type AppConfig struct {
	Env            string   `yaml:"env"`
	Port           int      `yaml:"port"`
	PublicBaseURL  string   `yaml:"public_base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	Mongo     MongoOptions     `yaml:"mongo"`
	Redis     RedisOptions     `yaml:"redis"`
	Auth      AuthOptions      `yaml:"auth"`
	Upload    UploadOptions    `yaml:"upload"`
	Storage   StorageOptions   `yaml:"storage"`
	AI        AIOptions        `yaml:"ai"`
	Stripe    StripeOptions    `yaml:"stripe"`
	Facebook  FacebookOptions  `yaml:"facebook"`
	Retention RetentionOptions `yaml:"retention"`
	Log       LogOptions       `yaml:"log"`
}

// MongoOptions configures the document store connection.
type MongoOptions struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisOptions configures the cache / task-queue connection.
type RedisOptions struct {
	URL string `yaml:"url"`
}

// AuthOptions configures JWT signing.
type AuthOptions struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// UploadOptions bounds image ingestion.
type UploadOptions struct {
	MaxSizeMB        int `yaml:"max_size_mb"`
	JPEGQuality      int `yaml:"jpeg_quality"`
	MaxDimension     int `yaml:"max_dimension"`
	ThumbnailMaxPx   int `yaml:"thumbnail_max_px"`
	ThumbnailQuality int `yaml:"thumbnail_quality"`
}

// StorageOptions selects the blob backend.
type StorageOptions struct {
	// Backend is "gridfs" or "s3".
	Backend string    `yaml:"backend"`
	S3      S3Options `yaml:"s3"`
}

// S3Options configures the optional S3 media backend.
type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
}

// AIProvider describes a single AI provider endpoint.
type AIProvider struct {
	// Type is "openai", "anthropic", "openrouter" or "openai-compatible".
	Type     string `yaml:"type"`
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Stream   bool   `yaml:"stream"`
}

// AIOptions configures post generation.
type AIOptions struct {
	Enable   bool       `yaml:"enable"`
	Provider AIProvider `yaml:"provider"`
}

// StripeOptions configures billing.
type StripeOptions struct {
	SecretKey string `yaml:"secret_key"`
}

// FacebookOptions configures Graph API OAuth and publishing.
type FacebookOptions struct {
	AppID        string `yaml:"app_id"`
	AppSecret    string `yaml:"app_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	GraphVersion string `yaml:"graph_version"`
}

// RetentionOptions tunes background cleanup and re-verification.
type RetentionOptions struct {
	PostMonths           int           `yaml:"post_months"`
	VerifyInterval       time.Duration `yaml:"verify_interval"`
	VerifyStaleThreshold time.Duration `yaml:"verify_stale_threshold"`
}

// LogOptions configures file logging rotation.
type LogOptions struct {
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}
