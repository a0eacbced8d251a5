package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Career   CareerConfig
	JWT      JWTConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string
	Port              int
	CORSAllowOrigins  string
	RateLimitMax      int
	RateLimitDuration time.Duration
}

// DatabaseConfig holds sqlite connection settings used by the sqlite slot backend.
type DatabaseConfig struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// StorageConfig selects and configures the key-value slot backend.
type StorageConfig struct {
	Driver        string
	BboltPath     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Timeout       time.Duration
}

// CareerConfig holds career save store policy.
type CareerConfig struct {
	SaveKey            string
	MaxRetries         int
	AllowNegativeAward bool
	LeaderboardSize    int
}

// JWTConfig holds session token settings.
type JWTConfig struct {
	Secret            string
	SessionExpiration time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level    string
	Encoding string
}

// LoadConfig loads configuration from environment variables and defaults.
// Environment variables are uppercase with underscores, e.g. STORAGE_DRIVER.
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)
	v.AutomaticEnv()

	if err := validateRequired(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:              v.GetString("server_host"),
			Port:              v.GetInt("server_port"),
			CORSAllowOrigins:  v.GetString("server_cors_allow_origins"),
			RateLimitMax:      v.GetInt("server_rate_limit_max"),
			RateLimitDuration: v.GetDuration("server_rate_limit_duration"),
		},
		Database: DatabaseConfig{
			Path:            v.GetString("db_path"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("db_conn_max_idle_time"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storage_driver"),
			BboltPath:     v.GetString("storage_bbolt_path"),
			RedisAddr:     v.GetString("storage_redis_addr"),
			RedisPassword: v.GetString("storage_redis_password"),
			RedisDB:       v.GetInt("storage_redis_db"),
			Timeout:       v.GetDuration("storage_timeout"),
		},
		Career: CareerConfig{
			SaveKey:            v.GetString("career_save_key"),
			MaxRetries:         v.GetInt("career_max_retries"),
			AllowNegativeAward: v.GetBool("career_allow_negative_awards"),
			LeaderboardSize:    v.GetInt("career_leaderboard_size"),
		},
		JWT: JWTConfig{
			Secret:            v.GetString("jwt_secret"),
			SessionExpiration: v.GetDuration("jwt_session_expiration"),
		},
		Log: LogConfig{
			Level:    v.GetString("log_level"),
			Encoding: v.GetString("log_encoding"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_cors_allow_origins", "*")
	v.SetDefault("server_rate_limit_max", 120)
	v.SetDefault("server_rate_limit_duration", time.Minute)

	v.SetDefault("db_path", "./data.db")
	v.SetDefault("db_max_open_conns", 5)
	v.SetDefault("db_max_idle_conns", 2)
	v.SetDefault("db_conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db_conn_max_idle_time", 2*time.Minute)

	v.SetDefault("storage_driver", "sqlite")
	v.SetDefault("storage_bbolt_path", "./career.bolt")
	v.SetDefault("storage_redis_addr", "localhost:6379")
	v.SetDefault("storage_redis_db", 0)
	v.SetDefault("storage_timeout", time.Second)

	v.SetDefault("career_save_key", "racing_game_career_save")
	v.SetDefault("career_max_retries", 3)
	v.SetDefault("career_allow_negative_awards", true)
	v.SetDefault("career_leaderboard_size", 10)

	v.SetDefault("jwt_session_expiration", 24*time.Hour)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_encoding", "json")
}

func bindEnv(v *viper.Viper) {
	// Server
	_ = v.BindEnv("server_host", "SERVER_HOST")
	_ = v.BindEnv("server_port", "SERVER_PORT")
	_ = v.BindEnv("server_cors_allow_origins", "SERVER_CORS_ALLOW_ORIGINS")
	_ = v.BindEnv("server_rate_limit_max", "SERVER_RATE_LIMIT_MAX")
	_ = v.BindEnv("server_rate_limit_duration", "SERVER_RATE_LIMIT_DURATION")

	// Database
	_ = v.BindEnv("db_path", "DB_PATH")
	_ = v.BindEnv("db_max_open_conns", "DB_MAX_OPEN_CONNS")
	_ = v.BindEnv("db_max_idle_conns", "DB_MAX_IDLE_CONNS")
	_ = v.BindEnv("db_conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	_ = v.BindEnv("db_conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME")

	// Storage
	_ = v.BindEnv("storage_driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage_bbolt_path", "STORAGE_BBOLT_PATH")
	_ = v.BindEnv("storage_redis_addr", "STORAGE_REDIS_ADDR")
	_ = v.BindEnv("storage_redis_password", "STORAGE_REDIS_PASSWORD")
	_ = v.BindEnv("storage_redis_db", "STORAGE_REDIS_DB")
	_ = v.BindEnv("storage_timeout", "STORAGE_TIMEOUT")

	// Career
	_ = v.BindEnv("career_save_key", "CAREER_SAVE_KEY")
	_ = v.BindEnv("career_max_retries", "CAREER_MAX_RETRIES")
	_ = v.BindEnv("career_allow_negative_awards", "CAREER_ALLOW_NEGATIVE_AWARDS")
	_ = v.BindEnv("career_leaderboard_size", "CAREER_LEADERBOARD_SIZE")

	// JWT
	_ = v.BindEnv("jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("jwt_session_expiration", "JWT_SESSION_EXPIRATION")

	// Logging
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_encoding", "LOG_ENCODING")
}

func validateRequired(v *viper.Viper) error {
	if v.GetString("jwt_secret") == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if v.GetString("career_save_key") == "" {
		return fmt.Errorf("CAREER_SAVE_KEY must not be empty")
	}
	return nil
}
