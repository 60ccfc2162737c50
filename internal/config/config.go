package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Backup   BackupConfig   `yaml:"backup"`
	Import   ImportConfig   `yaml:"import"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int    `yaml:"port"`
	Host                string `yaml:"host"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// ReadTimeout returns the read timeout as a duration
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// IdleTimeout returns the idle timeout as a duration
func (c ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// DatabaseConfig holds the PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis connection settings. An empty Addr disables Redis
// and distributed locks fall back to Postgres advisory locks.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// StorageConfig selects where snapshot payloads are archived
type StorageConfig struct {
	Type            string `yaml:"type"` // none, local or s3
	LocalPath       string `yaml:"local_path"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
	AWSRegion       string `yaml:"aws_region"`
	AWSProfile      string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// BackupConfig holds the snapshot throttle, retention and schedule
type BackupConfig struct {
	Retain                    int `yaml:"retain"`
	ScheduleIntervalMinutes   int `yaml:"schedule_interval_minutes"`
	LockTTLSeconds            int `yaml:"lock_ttl_seconds"`
	NewEnquiryCooldownMinutes int `yaml:"new_enquiry_cooldown_minutes"`
	UpdateCooldownMinutes     int `yaml:"update_cooldown_minutes"`
}

// Interval returns the scheduled snapshot interval as a duration
func (c BackupConfig) Interval() time.Duration {
	return time.Duration(c.ScheduleIntervalMinutes) * time.Minute
}

// LockTTL returns the scheduled snapshot lock TTL as a duration
func (c BackupConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// NewEnquiryCooldown returns the throttle window for new-enquiry snapshots
func (c BackupConfig) NewEnquiryCooldown() time.Duration {
	return time.Duration(c.NewEnquiryCooldownMinutes) * time.Minute
}

// UpdateCooldown returns the throttle window for enquiry-update snapshots
func (c BackupConfig) UpdateCooldown() time.Duration {
	return time.Duration(c.UpdateCooldownMinutes) * time.Minute
}

// ImportConfig holds upload limits for the import endpoints
type ImportConfig struct {
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// MaxUploadBytes returns the upload limit in bytes
func (c ImportConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// CORSConfig holds the allowed browser origins for the admin API
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on. It defaults to true.
func (c LogConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 120
	}
	if cfg.Server.IdleTimeoutSeconds == 0 {
		cfg.Server.IdleTimeoutSeconds = 60
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "none"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/snapshots"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "ap-southeast-2"
	}
	if cfg.Backup.Retain == 0 {
		cfg.Backup.Retain = 20
	}
	if cfg.Backup.ScheduleIntervalMinutes == 0 {
		cfg.Backup.ScheduleIntervalMinutes = 1440
	}
	if cfg.Backup.LockTTLSeconds == 0 {
		cfg.Backup.LockTTLSeconds = 300
	}
	if cfg.Backup.NewEnquiryCooldownMinutes == 0 {
		cfg.Backup.NewEnquiryCooldownMinutes = 60
	}
	if cfg.Backup.UpdateCooldownMinutes == 0 {
		cfg.Backup.UpdateCooldownMinutes = 30
	}
	if cfg.Import.MaxUploadMB == 0 {
		cfg.Import.MaxUploadMB = 32
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BACKUP_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Type = "s3"
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Storage.AWSRegion = v
	}
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AccessKeyID = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretAccessKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORS.AllowedOrigins = origins
		}
	}

	return cfg, nil
}
