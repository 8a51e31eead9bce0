package config

import (
	"os"

	"codeberg.org/mirrwin/upsmon/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const DefaultLogLevel = "info"

type Config struct {
	Interval      int      `mapstructure:"interval"`       // tick interval in milliseconds
	BufferSize    int      `mapstructure:"buffer_size"`    // rolling smoother capacity
	SmoothingBase float64  `mapstructure:"smoothing_base"` // recency weight base, > 1
	MaxPoints     int      `mapstructure:"max_points"`     // chart series capacity
	SeedCount     int      `mapstructure:"seed_count"`     // synthetic points on cold start
	SeedSpacing   int      `mapstructure:"seed_spacing"`   // spacing of seeded points in milliseconds
	RevertAfter   int      `mapstructure:"revert_after"`   // seconds without live data before falling back, 0 = never
	Database      string   `mapstructure:"database"`       // baseline store path, empty = in-memory
	Listen        string   `mapstructure:"listen"`
	Source        string   `mapstructure:"source"` // http, kafka or none
	KafkaBrokers  []string `mapstructure:"kafka_brokers"`
	KafkaTopic    string   `mapstructure:"kafka_topic"`
	KafkaGroup    string   `mapstructure:"kafka_group"`
	LogLevel      string   `mapstructure:"log_level"`
}

func Load() (*Config, error) {
	errFactory := errors.New()

	flags := pflag.NewFlagSet("upsmon", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	configFlag := flags.String("config", "", "Path to configuration file")
	flags.Int("interval", 0, "Tick interval in milliseconds")
	flags.String("listen", "", "HTTP listen address")
	flags.String("source", "", "Inbound sample source: http, kafka or none")
	flags.String("database", "", "Path to the baseline database")
	flags.String("log-level", "", "Log level: debug, info, warning or error")
	flags.StringSlice("kafka-brokers", nil, "Kafka broker addresses")
	flags.String("kafka-topic", "", "Kafka telemetry topic")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetDefault("interval", 1000)
	v.SetDefault("buffer_size", 15)
	v.SetDefault("smoothing_base", 1.2)
	v.SetDefault("max_points", 100)
	v.SetDefault("seed_count", 20)
	v.SetDefault("seed_spacing", 1000)
	v.SetDefault("revert_after", 0)
	v.SetDefault("database", "")
	v.SetDefault("listen", ":8130")
	v.SetDefault("source", "http")
	v.SetDefault("kafka_group", "upsmon")
	v.SetDefault("log_level", DefaultLogLevel)

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("UPSMON_CONFIG")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName("upsmon")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Command line flags override file values
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config":
		case "kafka-brokers":
			brokers, _ := flags.GetStringSlice("kafka-brokers")
			v.Set("kafka_brokers", brokers)
		case "kafka-topic":
			v.Set("kafka_topic", f.Value.String())
		case "log-level":
			v.Set("log_level", f.Value.String())
		default:
			v.Set(f.Name, f.Value.String())
		}
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < 1 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.BufferSize < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "buffer_size must be at least 1")
	}
	if c.SmoothingBase <= 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "smoothing_base must be greater than 1")
	}
	if c.MaxPoints < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "max_points must be at least 1")
	}
	if c.SeedCount < 0 || c.SeedSpacing < 1 {
		return errFactory.WithData(errors.ErrInvalidConfig, "invalid seed settings")
	}
	if c.RevertAfter < 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "revert_after must not be negative")
	}

	switch c.Source {
	case "http", "kafka", "none":
	default:
		return errFactory.WithData(errors.ErrInvalidConfig, "source must be http, kafka or none")
	}

	if c.Source == "kafka" && (len(c.KafkaBrokers) == 0 || c.KafkaTopic == "") {
		return errFactory.WithData(errors.ErrInvalidConfig, "kafka source requires brokers and topic")
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "warn", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
