package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete configuration for the service.
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	ServiceName string         `mapstructure:"service_name"`
	Server      ServerConfig   `mapstructure:"server"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Auth        AuthConfig     `mapstructure:"auth"`
	OAuth       OAuthConfig    `mapstructure:"oauth"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the connection string gorm's postgres driver expects.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		p.Host, p.User, p.Password, p.Name, p.Port, p.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type AuthConfig struct {
	JWTSecret                string        `mapstructure:"jwt_secret"`
	AccessTokenTTL           time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL          time.Duration `mapstructure:"refresh_token_ttl"`
	BcryptCost               int           `mapstructure:"bcrypt_cost"`
	RequireEmailConfirmation bool          `mapstructure:"require_email_confirmation"`
	SignInAttempts           int           `mapstructure:"sign_in_attempts"`
	SignInWindow             time.Duration `mapstructure:"sign_in_window"`
	RefreshSweepInterval     time.Duration `mapstructure:"refresh_sweep_interval"`
	RefreshWindow            time.Duration `mapstructure:"refresh_window"`
	SiteURL                  string        `mapstructure:"site_url"`
}

type OAuthConfig struct {
	CallbackURL string         `mapstructure:"callback_url"`
	GitHub      ProviderConfig `mapstructure:"github"`
	Google      ProviderConfig `mapstructure:"google"`
}

type ProviderConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// Enabled reports whether both credentials are present.
func (p ProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// Load reads .env (if present), the optional config file at path and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("service_name", "padeltracker")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.access_token_ttl", time.Hour)
	v.SetDefault("auth.refresh_token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.require_email_confirmation", false)
	v.SetDefault("auth.sign_in_attempts", 5)
	v.SetDefault("auth.sign_in_window", time.Minute)
	v.SetDefault("auth.refresh_sweep_interval", 5*time.Minute)
	v.SetDefault("auth.refresh_window", 10*time.Minute)
	v.SetDefault("auth.site_url", "http://localhost:5173")
	v.SetDefault("oauth.callback_url", "http://localhost:8080/api/v1/auth")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// Variable names the deployment already uses.
	_ = v.BindEnv("environment", "ENVIRONMENT")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.allowed_origins", "ALLOWED_ORIGINS")
	_ = v.BindEnv("postgres.host", "DB_HOST")
	_ = v.BindEnv("postgres.user", "DB_USER")
	_ = v.BindEnv("postgres.password", "DB_PASSWORD")
	_ = v.BindEnv("postgres.name", "DB_NAME")
	_ = v.BindEnv("postgres.port", "DB_PORT")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.username", "REDIS_USERNAME")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("redis.tls", "REDIS_TLS")
	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("auth.site_url", "SITE_URL")
	_ = v.BindEnv("oauth.github.client_id", "GITHUB_CLIENT_ID")
	_ = v.BindEnv("oauth.github.client_secret", "GITHUB_CLIENT_SECRET")
	_ = v.BindEnv("oauth.google.client_id", "GOOGLE_CLIENT_ID")
	_ = v.BindEnv("oauth.google.client_secret", "GOOGLE_CLIENT_SECRET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	var origins []string
	for _, o := range cfg.Server.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	cfg.Server.AllowedOrigins = origins

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if c.Postgres.User == "" || c.Postgres.Name == "" {
		return errors.New("postgres.user and postgres.name are required")
	}
	if c.Redis.Addr == "" {
		return errors.New("redis.addr is required")
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		return errors.New("auth token ttls must be positive")
	}
	if c.Auth.SignInAttempts <= 0 {
		return errors.New("auth.sign_in_attempts must be positive")
	}
	return nil
}
