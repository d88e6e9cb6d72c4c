package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "QUIZMASTER"

type Config struct {
	Client ClientConfig `mapstructure:"client"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

type ClientConfig struct {
	ServerURL          string        `mapstructure:"server_url"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	LoginRedirectDelay time.Duration `mapstructure:"login_redirect_delay"`
	UsersPerPage       int           `mapstructure:"users_per_page"`
}

type ServerConfig struct {
	Addr               string        `mapstructure:"addr"`
	DBPath             string        `mapstructure:"db_path"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	SecureCookies      bool          `mapstructure:"secure_cookies"`
	PassThreshold      float64       `mapstructure:"pass_threshold"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`
	SeedDemo           bool          `mapstructure:"seed_demo"`
	AdminEmail         string        `mapstructure:"admin_email"`
	AdminPassword      string        `mapstructure:"admin_password"`
	OpenTDBAmount      int           `mapstructure:"opentdb_amount"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.server_url", "http://127.0.0.1:8000")
	v.SetDefault("client.http_timeout", 10*time.Second)
	v.SetDefault("client.login_redirect_delay", time.Second)
	v.SetDefault("client.users_per_page", 10)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.db_path", "quizmaster.db")
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.secure_cookies", false)
	v.SetDefault("server.pass_threshold", 80.0)
	v.SetDefault("server.login_rate_per_minute", 10)
	v.SetDefault("server.seed_demo", true)
	v.SetDefault("server.admin_email", "admin@quizmaster.local")
	v.SetDefault("server.admin_password", "admin123")
	v.SetDefault("server.opentdb_amount", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
}

// Load reads configuration from path (a YAML file) when given, otherwise from
// an optional quizmaster.yaml in the working directory. QUIZMASTER_* env vars
// override both, e.g. QUIZMASTER_CLIENT_SERVER_URL.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("quizmaster")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Client.ServerURL) == "" {
		return errors.New("client.server_url is required")
	}
	if c.Client.HTTPTimeout <= 0 {
		return errors.New("client.http_timeout must be positive")
	}
	if c.Client.LoginRedirectDelay < 0 {
		return errors.New("client.login_redirect_delay must not be negative")
	}
	if c.Server.PassThreshold < 0 || c.Server.PassThreshold > 100 {
		return fmt.Errorf("server.pass_threshold must be within 0..100, got %v", c.Server.PassThreshold)
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("server.session_ttl must be positive")
	}
	return nil
}
