// Package config loads TOML configuration with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration shared by the loader, query and server
// entry points.
type Config struct {
	ServiceName string        `mapstructure:"service_name"`
	Environment string        `mapstructure:"environment"`
	Redis       RedisConfig   `mapstructure:"redis"`
	Load        LoadConfig    `mapstructure:"load"`
	Log         LogConfig     `mapstructure:"log"`
	HTTP        HTTPConfig    `mapstructure:"http"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// RedisConfig describes the backend connection.
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	MaxPoolSize  int    `mapstructure:"max_pool_size"`
	ConnTimeout  int    `mapstructure:"conn_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	// OpTimeout bounds every single backend round trip, in milliseconds.
	OpTimeout int `mapstructure:"op_timeout"`
}

// LoadConfig sizes a bulk load run.
type LoadConfig struct {
	TotalInvestors      int   `mapstructure:"total_investors"`
	AccountsPerInvestor int   `mapstructure:"accounts_per_investor"`
	BatchSize           int   `mapstructure:"batch_size"`
	MaxIDRetries        int   `mapstructure:"max_id_retries"`
	Seed                int64 `mapstructure:"seed"`
}

// LogConfig mirrors logging.Config so that config stays import-free of the
// logging package; entry points map one onto the other.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// HTTPConfig configures the query API server.
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads the file at path into cfg. Environment variables prefixed with
// BROKERAGE_ override file values (BROKERAGE_REDIS_HOST overrides redis.host).
func Load(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("BROKERAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "brokeragesim")
	v.SetDefault("environment", "dev")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_pool_size", 10)
	v.SetDefault("redis.conn_timeout", 5)
	v.SetDefault("redis.read_timeout", 3)
	v.SetDefault("redis.write_timeout", 3)
	v.SetDefault("redis.op_timeout", 2000)

	v.SetDefault("load.total_investors", 1000)
	v.SetDefault("load.accounts_per_investor", 1)
	v.SetDefault("load.batch_size", 100)
	v.SetDefault("load.max_id_retries", 100)
	v.SetDefault("load.seed", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file_path", "logs/brokeragesim.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}
