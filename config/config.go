package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort string `mapstructure:"APP_PORT"`
	Env     string `mapstructure:"ENV"`

	// Postgres configuration.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation session store.
	SessionTTLMinutes   int `mapstructure:"SESSION_TTL_MINUTES"`
	SessionSweepSeconds int `mapstructure:"SESSION_SWEEP_SECONDS"`
	SessionHistoryLimit int `mapstructure:"SESSION_HISTORY_LIMIT"`

	// Booking workflow engine.
	BookingIdleMinutes  int `mapstructure:"BOOKING_IDLE_MINUTES"`
	BookingMaxAgeMin    int `mapstructure:"BOOKING_MAX_AGE_MINUTES"`
	BookingMaxSessions  int `mapstructure:"BOOKING_MAX_SESSIONS"`
	BookingMaxAttempts  int `mapstructure:"BOOKING_MAX_ATTEMPTS"`
	BookingSweepSeconds int `mapstructure:"BOOKING_SWEEP_SECONDS"`

	// Appointment reminders.
	ReminderLeadMinutes int `mapstructure:"REMINDER_LEAD_MINUTES"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/agendai?sslmode=disable")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("SESSION_TTL_MINUTES", 30)
	viper.SetDefault("SESSION_SWEEP_SECONDS", 300)
	viper.SetDefault("SESSION_HISTORY_LIMIT", 50)
	viper.SetDefault("BOOKING_IDLE_MINUTES", 30)
	viper.SetDefault("BOOKING_MAX_AGE_MINUTES", 120)
	viper.SetDefault("BOOKING_MAX_SESSIONS", 1000)
	viper.SetDefault("BOOKING_MAX_ATTEMPTS", 5)
	viper.SetDefault("BOOKING_SWEEP_SECONDS", 300)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
