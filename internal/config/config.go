package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type SMTPConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type AppConfig struct {
	Name          string `mapstructure:"name"`
	URL           string `mapstructure:"url"`
	UploadsDir    string `mapstructure:"uploads_dir"`
	MaxUploadMB   int64  `mapstructure:"max_upload_mb"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	App      AppConfig      `mapstructure:"app"`
	Google   GoogleConfig   `mapstructure:"google"`
}

// MaxUploadBytes returns the upload size cap in bytes (default 5MB).
func (c *Config) MaxUploadBytes() int64 {
	mb := c.App.MaxUploadMB
	if mb <= 0 {
		mb = 5
	}
	return mb * 1024 * 1024
}

// Load reads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in the current working
// directory. Environment variables prefixed with SSL_ override file values,
// e.g. SSL_SERVER_PORT=9000.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SSL") // self-sufficient life
	v.AutomaticEnv()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("database.path", "data/app.db")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.from_name", "Self-Sufficient Life")
	v.SetDefault("app.name", "Self-Sufficient Life")
	v.SetDefault("app.url", "http://localhost:3000")
	v.SetDefault("app.uploads_dir", "uploads")
	v.SetDefault("app.max_upload_mb", 5)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt.secret is required")
	}

	return &c, nil
}
