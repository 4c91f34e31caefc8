// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes = []string{"local", "s3"}
	validDrivers      = []string{"sqlite", "postgres"}
	validMailDrivers  = []string{"log", "smtp", "resend"}
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Host     HostConfig     `mapstructure:"host"`
	Security SecurityConfig `mapstructure:"security"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Mail     MailConfig     `mapstructure:"mail"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	Env      string `mapstructure:"env"`
}

type HostConfig struct {
	Port        int       `mapstructure:"port"`
	Domain      string    `mapstructure:"domain"`
	CorsOrigins []string  `mapstructure:"cors_origins"`
	SSL         SSLConfig `mapstructure:"ssl"`
}

type SSLConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type SecurityConfig struct {
	Secret      string        `mapstructure:"secret"`
	VerifyTTL   time.Duration `mapstructure:"verify_ttl"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	DownloadTTL time.Duration `mapstructure:"download_ttl"`

	// StrictCredentials makes signup enforce the email format and password
	// length rules. Off by default, signup only requires both to be present.
	StrictCredentials bool `mapstructure:"strict_credentials"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type StorageConfig struct {
	Type string   `mapstructure:"type"`
	Root string   `mapstructure:"root"`
	S3   S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type UploadConfig struct {
	// MaxSize is given in MiB in the config file and converted to bytes by Load
	MaxSize           int64    `mapstructure:"max_size"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type MailConfig struct {
	Driver       string `mapstructure:"driver"`
	From         string `mapstructure:"from"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	ResendAPIKey string `mapstructure:"resend_api_key"`
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// BaseURL is the public address of the service, used to build the absolute
// links that are sent out by email
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.Host.SSL.Enabled {
		scheme = "https"
	}

	if (scheme == "http" && c.Host.Port == 80) || (scheme == "https" && c.Host.Port == 443) {
		return scheme + "://" + c.Host.Domain
	}

	return scheme + "://" + c.Host.Domain + ":" + strconv.Itoa(c.Host.Port)
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup parses the command line, loads an optional .env file and reads the
// config. Function will return an error if something is critically wrong and
// the application can't run because of that.
func Setup() (*Config, error) {
	fs := pflag.CommandLine
	path := fs.String("config", "", "Path to the config file (defaults to ./config.toml)")
	fs.Int("port", 0, "Port to listen on")
	pflag.Parse()

	// The .env file is optional, plain environment variables work just as well
	_ = godotenv.Load()

	return Load(*path, fs)
}

// Load reads the config file at path (or ./config.toml if path is empty and
// the file exists), overlays environment variables and the given flags and
// validates the result
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.env", "APP_ENV")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.domain", "HOST_DOMAIN")
	v.BindEnv("host.cors_origins", "HOST_CORS")

	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("security.secret", "SECURITY_SECRET")
	v.BindEnv("security.verify_ttl", "SECURITY_VERIFY_TTL")
	v.BindEnv("security.session_ttl", "SECURITY_SESSION_TTL")
	v.BindEnv("security.download_ttl", "SECURITY_DOWNLOAD_TTL")
	v.BindEnv("security.strict_credentials", "SECURITY_STRICT_CREDENTIALS")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.root", "STORAGE_ROOT")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")
	v.BindEnv("upload.allowed_extensions", "UPLOAD_ALLOWED_EXTENSIONS")

	v.BindEnv("mail.driver", "MAIL_DRIVER")
	v.BindEnv("mail.from", "MAIL_SENDER_ADDRESS")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME")
	v.BindEnv("mail.password", "MAIL_PASSWORD")
	v.BindEnv("mail.resend_api_key", "RESEND_API_KEY")

	if flags != nil {
		if f := flags.Lookup("port"); f != nil {
			v.BindPFlag("host.port", f)
		}
	}

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.env", "production")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("security.verify_ttl", time.Hour)
	v.SetDefault("security.session_ttl", time.Hour*24)
	v.SetDefault("security.download_ttl", time.Minute*5)
	v.SetDefault("security.strict_credentials", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.root", "uploads")

	v.SetDefault("upload.max_size", 16)
	v.SetDefault("upload.allowed_extensions", []string{"pptx", "docx", "xlsx"})

	v.SetDefault("mail.driver", "log")
	v.SetDefault("mail.port", 587)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	for i, ext := range c.Upload.AllowedExtensions {
		c.Upload.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}

	c.Upload.MaxSize <<= 20
	return &c, nil
}

func (c *Config) validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}

	if c.Host.Port <= 0 {
		return errors.New("invalid port provided")
	}

	if c.Host.SSL.Enabled {
		if c.Host.SSL.CertificatePath == "" {
			return errors.New("no ssl certificate path provided")
		}

		if c.Host.SSL.CertificateKeyPath == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if c.Security.Secret == "" {
		return fmt.Errorf("security.secret is not set. Set it as the SECURITY_SECRET environment variable or in config.toml, for example:\n\n%s", genSecret())
	}

	if c.Security.VerifyTTL <= 0 || c.Security.SessionTTL <= 0 || c.Security.DownloadTTL <= 0 {
		return errors.New("token ttls must be bigger than 0")
	}

	if !slices.Contains(validDrivers, c.Database.Driver) {
		return errors.New("invalid database driver provided")
	}

	if c.Database.DSN == "" {
		return errors.New("database dsn can't be empty")
	}

	switch c.Storage.Type {
	case "local":
		if c.Storage.Root == "" {
			return errors.New("storage root can't be empty")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("bucket can't be empty")
		}
		if c.Storage.S3.AccessKeyID == "" {
			return errors.New("access key id can't be empty")
		}
		if c.Storage.S3.SecretAccessKey == "" {
			return errors.New("secret access key can't be empty")
		}
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}

	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if len(c.Upload.AllowedExtensions) == 0 {
		return errors.New("upload.allowed_extensions can't be empty")
	}

	if !slices.Contains(validMailDrivers, c.Mail.Driver) {
		return errors.New("invalid mail driver provided")
	}

	return nil
}
