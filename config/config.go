package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	DB       DBConfig       `mapstructure:"db"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Cron     CronConfig     `mapstructure:"cron"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Twilio   TwilioConfig   `mapstructure:"twilio"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Images   ImageConfig    `mapstructure:"images"`
	Redis    RedisConfig    `mapstructure:"redis"`
	External ExternalConfig `mapstructure:"external"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Driver          string `mapstructure:"driver"` // postgres or sqlite
	URL             string `mapstructure:"url"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Mode  string `mapstructure:"mode"` // production or development
	File  string `mapstructure:"file"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type CronConfig struct {
	Secret   string `mapstructure:"secret"`
	Schedule string `mapstructure:"schedule"`
	Timezone string `mapstructure:"timezone"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

type TwilioConfig struct {
	AccountSID  string `mapstructure:"account_sid"`
	AuthToken   string `mapstructure:"auth_token"`
	PhoneNumber string `mapstructure:"phone_number"`
}

type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // local or s3
	Bucket        string `mapstructure:"bucket"`
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3Endpoint    string `mapstructure:"s3_endpoint"`
	S3AccessKey   string `mapstructure:"s3_access_key"`
	S3SecretKey   string `mapstructure:"s3_secret_key"`
	S3UseSSL      bool   `mapstructure:"s3_use_ssl"`
}

type ImageConfig struct {
	MaxWidth int   `mapstructure:"max_width"`
	Quality  int   `mapstructure:"quality"`
	MaxBytes int64 `mapstructure:"max_bytes"`
	MaxFiles int   `mapstructure:"max_files"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	CartTTL int    `mapstructure:"cart_ttl_hours"`
}

// ExternalConfig bounds every call to the mail, SMS and storage providers.
type ExternalConfig struct {
	TimeoutSeconds      int `mapstructure:"timeout_seconds"`
	RetryMaxAttempts    int `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff int `mapstructure:"retry_initial_backoff_ms"`
}

func (e ExternalConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutSeconds) * time.Second
}

func (e ExternalConfig) InitialBackoff() time.Duration {
	return time.Duration(e.RetryInitialBackoff) * time.Millisecond
}

// Load reads .env (if present) and maps environment variables onto Config.
// Keys are flattened with underscores, so db.url is read from DB_URL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.url", "")
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.max_open_conns", 50)
	v.SetDefault("db.conn_max_lifetime", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "development")
	v.SetDefault("log.file", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_hours", 24)

	v.SetDefault("cron.secret", "")
	v.SetDefault("cron.schedule", "")
	v.SetDefault("cron.timezone", "America/Mexico_City")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@gateworks.local")
	v.SetDefault("smtp.from_name", "Gateworks")

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.phone_number", "")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.bucket", "images")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.s3_access_key", "")
	v.SetDefault("storage.s3_secret_key", "")
	v.SetDefault("storage.s3_use_ssl", true)

	v.SetDefault("images.max_width", 1200)
	v.SetDefault("images.quality", 80)
	v.SetDefault("images.max_bytes", 10<<20)
	v.SetDefault("images.max_files", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.cart_ttl_hours", 72)

	v.SetDefault("external.timeout_seconds", 15)
	v.SetDefault("external.retry_max_attempts", 1)
	v.SetDefault("external.retry_initial_backoff_ms", 200)
}
