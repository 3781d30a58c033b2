package config

import (
	"strings"
	"time"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Redis    RedisConfig    `yaml:"redis" mapstructure:"redis"`
	Progress ProgressConfig `yaml:"progress" mapstructure:"progress"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the Postgres connection.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// RedisConfig configures the progress store connection.
type RedisConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`
}

// ProgressConfig configures job progress reporting.
type ProgressConfig struct {
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MinInterval time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
}

// IngestConfig configures the file loaders.
type IngestConfig struct {
	RegistryChunkSize    int    `yaml:"registry_chunk_size" mapstructure:"registry_chunk_size"`
	SuppressionBatchSize int    `yaml:"suppression_batch_size" mapstructure:"suppression_batch_size"`
	SalesBatchSize       int    `yaml:"sales_batch_size" mapstructure:"sales_batch_size"`
	Delimiter            string `yaml:"delimiter" mapstructure:"delimiter"`
	// ReplaceExisting truncates the suppression table before a load.
	ReplaceExisting    bool `yaml:"replace_existing" mapstructure:"replace_existing"`
	MaxConcurrentFiles int  `yaml:"max_concurrent_files" mapstructure:"max_concurrent_files"`
}

// DelimiterRune returns the configured delimiter, or ';' when unset.
func (c IngestConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return ';'
	}
	return r
}

// MetricsConfig configures the Prometheus pushgateway used at the end of a run.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" mapstructure:"pushgateway_url"`
	JobName        string `yaml:"job_name" mapstructure:"job_name"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.max_conns", 4)
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.key_prefix", "job:")
	v.SetDefault("progress.ttl", time.Hour)
	v.SetDefault("progress.min_interval", 0)
	v.SetDefault("ingest.registry_chunk_size", 10000)
	v.SetDefault("ingest.suppression_batch_size", 10000)
	v.SetDefault("ingest.sales_batch_size", 10000)
	v.SetDefault("ingest.delimiter", ";")
	v.SetDefault("ingest.replace_existing", true)
	v.SetDefault("ingest.max_concurrent_files", 1)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job_name", "dnc_ingest")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes: "ingest",
// "db", "job".
func (c *Config) Validate(mode string) error {
	switch mode {
	case "ingest":
		if err := c.validateStore(); err != nil {
			return err
		}
		return eris.Wrap(c.validateIngest(), "config")
	case "db":
		return c.validateStore()
	case "job":
		return eris.Wrap(validation.ValidateStruct(&c.Redis,
			validation.Field(&c.Redis.URL, validation.Required.Error("redis.url is required")),
		), "config")
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
}

func (c *Config) validateStore() error {
	return eris.Wrap(validation.ValidateStruct(&c.Store,
		validation.Field(&c.Store.DatabaseURL, validation.Required.Error("store.database_url is required")),
		validation.Field(&c.Store.MaxConns, validation.Min(int32(0)).Error("store.max_conns must be >= 0")),
	), "config")
}

func (c *Config) validateIngest() error {
	positive := func(name string) []validation.Rule {
		msg := "ingest." + name + " must be > 0"
		return []validation.Rule{validation.Required.Error(msg), validation.Min(1).Error(msg)}
	}
	ic := &c.Ingest
	return validation.ValidateStruct(ic,
		validation.Field(&ic.RegistryChunkSize, positive("registry_chunk_size")...),
		validation.Field(&ic.SuppressionBatchSize, positive("suppression_batch_size")...),
		validation.Field(&ic.SalesBatchSize, positive("sales_batch_size")...),
		validation.Field(&ic.Delimiter,
			validation.RuneLength(1, 1).Error("ingest.delimiter must be a single character"),
		),
		validation.Field(&ic.MaxConcurrentFiles,
			validation.Required.Error("ingest.max_concurrent_files must be between 1 and 16"),
			validation.Min(1).Error("ingest.max_concurrent_files must be between 1 and 16"),
			validation.Max(16).Error("ingest.max_concurrent_files must be between 1 and 16"),
		),
	)
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
