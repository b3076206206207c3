package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type SourceConfig struct {
	Type   string `mapstructure:"type"`   // "file" or "postgres"
	Path   string `mapstructure:"path"`   // file sources only
	Format string `mapstructure:"format"` // "json", "ndjson", "csv"; inferred from the extension when empty
	Limit  int    `mapstructure:"limit"`  // batch cap handed to the source
}

type OutputConfig struct {
	Destination string `mapstructure:"destination"` // console, json, csv, parquet, kafka, rabbitmq, postgres
	Path        string `mapstructure:"path"`
	Folder      string `mapstructure:"folder"`
	Topic       string `mapstructure:"topic"`
	Cloud       bool   `mapstructure:"cloud"` // write parquet objects through CloudStorage instead of the local disk
}

type KafkaConfig struct {
	BrokerList       string `mapstructure:"broker_list"`
	SessionTimeoutMs int    `mapstructure:"session_timeout_ms"`
}

type RabbitMQConfig struct {
	URL        string `mapstructure:"url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

type CloudStorageConfig struct {
	Provider        string `mapstructure:"provider"`
	Region          string `mapstructure:"region"`
	BucketName      string `mapstructure:"bucket_name"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// URL renders the settings as a postgres:// connection string usable by both pgx and lib/pq.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%s", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ScopeConfig names one dashboard-scoped report (restaurant, customer or driver) computed next to the platform report.
type ScopeConfig struct {
	Kind string `mapstructure:"kind"`
	ID   string `mapstructure:"id"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type GeneratorConfig struct {
	Seed        int64     `mapstructure:"seed"`
	Orders      int       `mapstructure:"orders"`
	Users       int       `mapstructure:"users"`
	Restaurants int       `mapstructure:"restaurants"`
	Partners    int       `mapstructure:"partners"`
	StartDate   time.Time `mapstructure:"start_date"`
	EndDate     time.Time `mapstructure:"end_date"`
	CancelRate  float64   `mapstructure:"cancel_rate"`
	UndatedRate float64   `mapstructure:"undated_rate"`
	OutputFile  string    `mapstructure:"output_file"`
	SeedDB      bool      `mapstructure:"seed_db"`
	// Reset empties the seeded tables before inserting.
	Reset       bool      `mapstructure:"reset"`
}

type Config struct {
	Env string `mapstructure:"env"`
	// Now pins the report clock; the zero value means "wall clock when the command starts".
	Now                      time.Time          `mapstructure:"now"`
	Period                   string             `mapstructure:"period"`
	Alignment                string             `mapstructure:"alignment"`
	WeekStart                string             `mapstructure:"week_start"`
	Timezone                 string             `mapstructure:"timezone"`
	TopN                     int                `mapstructure:"top_n"`
	IncludeUndatedInLifetime bool               `mapstructure:"include_undated_in_lifetime"`
	DurationFallback         time.Duration      `mapstructure:"duration_fallback"`
	Scope                    ScopeConfig        `mapstructure:"scope"`
	ScopedReports            []ScopeConfig      `mapstructure:"scoped_reports"`
	Source                   SourceConfig       `mapstructure:"source"`
	Output                   OutputConfig       `mapstructure:"output"`
	Kafka                    KafkaConfig        `mapstructure:"kafka"`
	RabbitMQ                 RabbitMQConfig     `mapstructure:"rabbitmq"`
	CloudStorage             CloudStorageConfig `mapstructure:"cloud_storage"`
	Database                 DatabaseConfig     `mapstructure:"database"`
	Watch                    WatchConfig        `mapstructure:"watch"`
	Generator                GeneratorConfig    `mapstructure:"generator"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("period", "week")
	v.SetDefault("alignment", "rolling")
	v.SetDefault("week_start", "monday")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("top_n", 5)
	v.SetDefault("include_undated_in_lifetime", false)
	v.SetDefault("duration_fallback", 30*time.Minute)
	v.SetDefault("scope.kind", "platform")
	v.SetDefault("source.type", "file")
	v.SetDefault("source.limit", 5000)
	v.SetDefault("output.destination", "console")
	v.SetDefault("output.topic", "rollup_reports")
	v.SetDefault("output.folder", "reports")
	v.SetDefault("kafka.broker_list", "localhost:9092")
	v.SetDefault("rabbitmq.exchange", "foodrollup.events")
	v.SetDefault("rabbitmq.routing_key", "rollup.report.generated")
	v.SetDefault("cloud_storage.provider", "s3")
	v.SetDefault("cloud_storage.region", "us-east-1")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("watch.interval", time.Minute)
	v.SetDefault("generator.seed", 42)
	v.SetDefault("generator.orders", 2000)
	v.SetDefault("generator.users", 300)
	v.SetDefault("generator.restaurants", 40)
	v.SetDefault("generator.partners", 25)
	v.SetDefault("generator.cancel_rate", 0.08)
	v.SetDefault("generator.undated_rate", 0.01)
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), cfgFile)
}

// LoadConfigFrom reads the configuration into v. A missing default config file is not an error; an explicit
// cfgFile that cannot be read is.
func LoadConfigFrom(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// Default config location
		v.AddConfigPath(".")
		v.AddConfigPath("examples")
		v.SetConfigName("foodrollup")
	}

	v.SetEnvPrefix("FOODROLLUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // Read in environment variables that match
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := v.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
