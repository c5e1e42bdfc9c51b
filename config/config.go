package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// MongoDB configuration. Slots and appointments live in separate
	// databases owned by separate stores; consistency between them is
	// maintained by the booking saga, never by a shared transaction.
	MongoURI        string `mapstructure:"MONGO_URI"`
	AvailabilityDB  string `mapstructure:"AVAILABILITY_DB"`
	AppointmentsDB  string `mapstructure:"APPOINTMENTS_DB"`
	StoreTimeoutSec int    `mapstructure:"STORE_TIMEOUT_SEC"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB      int    `mapstructure:"REDIS_LOCK_DB"`
	RedisReminderDB  int    `mapstructure:"REDIS_REMINDER_QUEUE_DB"`
	ReminderLeadMins int    `mapstructure:"REMINDER_LEAD_MINUTES"`

	// Slot hold / reaper tuning.
	HoldDurationMins  int `mapstructure:"HOLD_DURATION_MINUTES"`
	ReaperIntervalSec int `mapstructure:"REAPER_INTERVAL_SEC"`
	ReaperBatchSize   int `mapstructure:"REAPER_BATCH_SIZE"`
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
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("AVAILABILITY_DB", "slotwise_availability")
	viper.SetDefault("APPOINTMENTS_DB", "slotwise_appointments")
	viper.SetDefault("STORE_TIMEOUT_SEC", 5)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LOCK_DB", 0)
	viper.SetDefault("REDIS_REMINDER_QUEUE_DB", 1)
	viper.SetDefault("REMINDER_LEAD_MINUTES", 60)
	viper.SetDefault("HOLD_DURATION_MINUTES", 5)
	viper.SetDefault("REAPER_INTERVAL_SEC", 30)
	viper.SetDefault("REAPER_BATCH_SIZE", 100)

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

// HoldDuration returns the configured slot hold TTL.
func HoldDuration() time.Duration {
	return time.Duration(AppConfig.HoldDurationMins) * time.Minute
}

// StoreTimeout bounds every individual slot-store or appointment-store call.
func StoreTimeout() time.Duration {
	return time.Duration(AppConfig.StoreTimeoutSec) * time.Second
}
