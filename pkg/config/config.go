package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Database (sqlite file holding play records and training runs)
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Model persistence
	ModelPath string `mapstructure:"MODEL_PATH"`
	ModelKind string `mapstructure:"MODEL_KIND"` // "boosted" or "forest"

	// Training
	TrainSeed     int64   `mapstructure:"TRAIN_SEED"`
	TreeCount     int     `mapstructure:"TREE_COUNT"`
	MaxDepth      int     `mapstructure:"MAX_DEPTH"`
	LearningRate  float64 `mapstructure:"LEARNING_RATE"`
	Subsample     float64 `mapstructure:"SUBSAMPLE"`
	TrainCSVPath  string  `mapstructure:"TRAIN_CSV_PATH"`
	SyntheticRows int     `mapstructure:"SYNTHETIC_ROWS"`

	// Rate limit for retrain requests (per minute)
	TrainRateLimit int `mapstructure:"TRAIN_RATE_LIMIT"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "playcall.db")
	viper.SetDefault("MODEL_PATH", "models/expected_yards.json")
	viper.SetDefault("MODEL_KIND", "boosted")
	viper.SetDefault("TRAIN_SEED", 42)
	viper.SetDefault("TREE_COUNT", 200)
	viper.SetDefault("MAX_DEPTH", 6)
	viper.SetDefault("LEARNING_RATE", 0.1)
	viper.SetDefault("SUBSAMPLE", 0.8)
	viper.SetDefault("TRAIN_CSV_PATH", "data/plays.csv")
	viper.SetDefault("SYNTHETIC_ROWS", 20000)
	viper.SetDefault("TRAIN_RATE_LIMIT", 2)
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
