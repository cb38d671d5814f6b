package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Data           DataConfig           `mapstructure:"data"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DataConfig selects the snapshot source. Source is "csv" or "postgres".
type DataConfig struct {
	Source   string         `mapstructure:"source"`
	CSV      CSVConfig      `mapstructure:"csv"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type CSVConfig struct {
	RestaurantPath string `mapstructure:"restaurant_path"`
	UserPath       string `mapstructure:"user_path"`
	VisitPath      string `mapstructure:"visit_path"`
}

type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	RestaurantTable string        `mapstructure:"restaurant_table"`
	UserTable       string        `mapstructure:"user_table"`
	VisitTable      string        `mapstructure:"visit_table"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig is the optional warm result cache. An empty URL disables
// caching entirely; the engine stays deterministic either way.
type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ResultTTL  time.Duration `mapstructure:"result_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendationConfig struct {
	DefaultTopN int `mapstructure:"default_top_n"`
	MaxTopN     int `mapstructure:"max_top_n"`

	// Candidate oversampling factor applied before the geo gate and the
	// visit-history exclusion so the post-filter list can still fill top N.
	OversampleFactor int `mapstructure:"oversample_factor"`

	// Number of peers consulted by the collaborative engine.
	SimilarUserCount int `mapstructure:"similar_user_count"`

	// Radius applied when a location is supplied without one.
	DefaultMaxDistanceKm float64 `mapstructure:"default_max_distance_km"`

	// Minimum body lengths for review selection. The restaurant review
	// picker and the post feed historically used different cutoffs (50 and
	// 30); both are kept explicit so call sites cannot drift silently.
	ReviewMinBodyLen int `mapstructure:"review_min_body_len"`
	PostMinBodyLen   int `mapstructure:"post_min_body_len"`

	// Reviews returned per restaurant by the review picker.
	ReviewTopN int `mapstructure:"review_top_n"`

	// Post feed page size bounds.
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	viper.SetDefault("data.source", "csv")
	viper.SetDefault("data.csv.restaurant_path", "./data/restaurant_data.csv")
	viper.SetDefault("data.csv.user_path", "./data/user_data.csv")
	viper.SetDefault("data.csv.visit_path", "./data/visit_data.csv")
	viper.SetDefault("data.postgres.restaurant_table", "restaurants")
	viper.SetDefault("data.postgres.user_table", "users")
	viper.SetDefault("data.postgres.visit_table", "visits")
	viper.SetDefault("data.postgres.connect_timeout", "10s")

	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")
	viper.SetDefault("redis.result_ttl", "15m")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("recommendation.default_top_n", 10)
	viper.SetDefault("recommendation.max_top_n", 100)
	viper.SetDefault("recommendation.oversample_factor", 2)
	viper.SetDefault("recommendation.similar_user_count", 10)
	viper.SetDefault("recommendation.default_max_distance_km", 5.0)
	viper.SetDefault("recommendation.review_min_body_len", 50)
	viper.SetDefault("recommendation.post_min_body_len", 30)
	viper.SetDefault("recommendation.review_top_n", 3)
	viper.SetDefault("recommendation.default_page_size", 6)
	viper.SetDefault("recommendation.max_page_size", 50)

	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
