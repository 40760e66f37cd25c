package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type Config struct {
	Seed            int    `mapstructure:"seed"`
	StoragePath     string `mapstructure:"storage_path"`
	InitialRequests int    `mapstructure:"initial_requests"`

	// LegacyTransitions disables the transition table: any status write on
	// an existing request is applied, whatever its current state.
	LegacyTransitions bool `mapstructure:"legacy_transitions"`

	WorkerID         string  `mapstructure:"worker_id"`
	WorkerRating     float64 `mapstructure:"worker_rating"`
	WorkerEfficiency float64 `mapstructure:"worker_efficiency"`

	// Simulation shape
	StartDate        time.Time `mapstructure:"start_date"`
	EndDate          time.Time `mapstructure:"end_date"`
	RequestFrequency float64   `mapstructure:"request_frequency"` // new requests per simulated hour
	AcceptDelayMin   int       `mapstructure:"accept_delay_min"`  // minutes
	AcceptDelayMax   int       `mapstructure:"accept_delay_max"`
	CollectDelayMin  int       `mapstructure:"collect_delay_min"`
	CollectDelayMax  int       `mapstructure:"collect_delay_max"`
	CancellationRate float64   `mapstructure:"cancellation_rate"`
	HighUrgencyRatio float64   `mapstructure:"high_urgency_ratio"`
	Continuous       bool      `mapstructure:"continuous"`

	// Output
	KafkaEnabled    bool               `mapstructure:"kafka_enabled"`
	KafkaBrokerList string             `mapstructure:"kafka_broker_list"`
	OutputFormat    string             `mapstructure:"output_format"` // json, parquet
	OutputPath      string             `mapstructure:"output_path"`
	OutputFolder    string             `mapstructure:"output_folder"`
	CloudStorage    CloudStorageConfig `mapstructure:"cloud_storage"`
	Database        DatabaseConfig     `mapstructure:"database"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv() // Read in environment variables that match

	viper.SetDefault("storage_path", ".ecopickup")
	viper.SetDefault("initial_requests", 5)
	viper.SetDefault("worker_id", "worker_1")
	viper.SetDefault("worker_rating", 4.8)
	viper.SetDefault("worker_efficiency", 0.95)
	viper.SetDefault("request_frequency", 2.0)
	viper.SetDefault("accept_delay_min", 5)
	viper.SetDefault("accept_delay_max", 45)
	viper.SetDefault("collect_delay_min", 20)
	viper.SetDefault("collect_delay_max", 120)
	viper.SetDefault("cancellation_rate", 0.05)
	viper.SetDefault("high_urgency_ratio", 0.2)
	viper.SetDefault("start_date", time.Now().Format(time.RFC3339))
	viper.SetDefault("end_date", time.Now().AddDate(0, 0, 1).Format(time.RFC3339))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
