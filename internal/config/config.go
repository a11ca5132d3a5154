// Package config loads process configuration from the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string        `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	Store   StoreConfig   `mapstructure:",squash"`
	Secrets SecretsConfig `mapstructure:",squash"`
	LLM     LLMConfig     `mapstructure:",squash"`
}

type StoreConfig struct {
	Backend     string `mapstructure:"store_backend"` // sqlserver | postgres | sqlite | redis | memory
	AutoMigrate bool   `mapstructure:"store_auto_migrate"`

	SQLServerName   string `mapstructure:"sql_server_name"`
	SQLDatabaseName string `mapstructure:"sql_database_name"`
	SQLUsername     string `mapstructure:"sql_username"`
	SQLPassword     string `mapstructure:"sql_password"`

	DatabaseURL string `mapstructure:"database_url"` // postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type SecretsConfig struct {
	Backend      string `mapstructure:"secret_backend"` // keyvault | aws | env
	KeyVaultName string `mapstructure:"keyvault_name"`
	SecretName   string `mapstructure:"openai_secret_name"`
	AWSRegion    string `mapstructure:"aws_region"`
}

type LLMConfig struct {
	BaseURL         string        `mapstructure:"llm_base_url"`
	Model           string        `mapstructure:"llm_model"`
	UpstreamTimeout time.Duration `mapstructure:"llm_timeout"`
}

var defaults = map[string]any{
	"port":               "3000",
	"request_timeout":    time.Duration(0),
	"store_backend":      "sqlserver",
	"store_auto_migrate": false,
	"sql_server_name":    "",
	"sql_database_name":  "",
	"sql_username":       "",
	"sql_password":       "",
	"database_url":       "",
	"sqlite_path":        "winereview.db",
	"redis_addr":         "127.0.0.1:6379",
	"redis_prefix":       "winereview",
	"secret_backend":     "keyvault",
	"keyvault_name":      "",
	"openai_secret_name": "openai-api-key",
	"aws_region":         "",
	"llm_base_url":       "https://api.openai.com/v1/",
	"llm_model":          "gpt-3.5-turbo-instruct",
	"llm_timeout":        time.Duration(0),
}

// Load reads configuration into a fresh viper instance. Every key can be set
// through its upper-cased environment variable (PORT, KEYVAULT_NAME,
// SQL_SERVER_NAME, ...). cfgFile is optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings required by the selected backends.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	switch c.Store.Backend {
	case "sqlserver":
		if c.Store.SQLServerName == "" || c.Store.SQLDatabaseName == "" {
			errs = append(errs, errors.New("SQL_SERVER_NAME and SQL_DATABASE_NAME are required for the sqlserver store"))
		}
		if c.Store.SQLUsername == "" {
			errs = append(errs, errors.New("SQL_USERNAME is required for the sqlserver store"))
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis store"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend))
	}

	switch c.Secrets.Backend {
	case "keyvault":
		if c.Secrets.KeyVaultName == "" {
			errs = append(errs, errors.New("KEYVAULT_NAME is required for the keyvault secret backend"))
		}
	case "aws", "env":
	default:
		errs = append(errs, fmt.Errorf("unknown SECRET_BACKEND %q", c.Secrets.Backend))
	}
	if c.Secrets.SecretName == "" {
		errs = append(errs, errors.New("OPENAI_SECRET_NAME is required"))
	}

	return errors.Join(errs...)
}
