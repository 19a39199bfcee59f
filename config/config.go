package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DurationLimit is the allowed length of one unavailability type, in hours.
type DurationLimit struct {
	MinHours float64 `mapstructure:"minHours"`
	MaxHours float64 `mapstructure:"maxHours"`
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage. STORAGE_DRIVER is "mongo" or "memory".
	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	TenantDBPrefix string `mapstructure:"TENANT_DB_PREFIX"`

	// Redis configuration. Locks fall back to in-process when REDIS_ADDR is empty.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Calendar defaults applied when a tenant has no company settings.
	Timezone               string `mapstructure:"TIMEZONE"`
	DefaultWorkStart       string `mapstructure:"DEFAULT_WORK_START"`
	DefaultWorkEnd         string `mapstructure:"DEFAULT_WORK_END"`
	DefaultServiceDuration int    `mapstructure:"DEFAULT_SERVICE_DURATION"`
	BusinessHoursStart     string `mapstructure:"BUSINESS_HOURS_START"`
	BusinessHoursEnd       string `mapstructure:"BUSINESS_HOURS_END"`

	// Booking policy.
	AllowOffSlotBookings bool          `mapstructure:"ALLOW_OFF_SLOT_BOOKINGS"`
	AllowStaffOverride   bool          `mapstructure:"ALLOW_STAFF_OVERRIDE"`
	AutoNoShow           bool          `mapstructure:"AUTO_NO_SHOW"`
	NoShowGrace          time.Duration `mapstructure:"NO_SHOW_GRACE"`

	// Engine bounds.
	MaxRecurrenceOccurrences   int `mapstructure:"MAX_RECURRENCE_OCCURRENCES"`
	RecurrenceCheckHorizonDays int `mapstructure:"RECURRENCE_CHECK_HORIZON_DAYS"`
	MaxRangeDays               int `mapstructure:"MAX_RANGE_DAYS"`
	NextSlotsHorizonDays       int `mapstructure:"NEXT_SLOTS_HORIZON_DAYS"`
	AvailabilityFanoutLimit    int `mapstructure:"AVAILABILITY_FANOUT_LIMIT"`

	LockTTL         time.Duration `mapstructure:"LOCK_TTL"`
	LockWaitTimeout time.Duration `mapstructure:"LOCK_WAIT_TIMEOUT"`

	// Unavailability policy, keyed by block type.
	UnavailabilityLimits map[string]DurationLimit `mapstructure:"UNAVAILABILITY_LIMITS"`
	MonthlyBlockLimits   map[string]int           `mapstructure:"MONTHLY_BLOCK_LIMITS"`

	// Event publishing. Disabled when KAFKA_BROKERS is empty.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	// Tracing.
	OtelEnabled       bool    `mapstructure:"OTEL_ENABLED"`
	OtelEndpoint      string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelSamplingRatio float64 `mapstructure:"OTEL_SAMPLING_RATIO"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)

	v.SetDefault("STORAGE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("TENANT_DB_PREFIX", "tenant_")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_LOCK_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)

	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("DEFAULT_WORK_START", "08:00")
	v.SetDefault("DEFAULT_WORK_END", "18:00")
	v.SetDefault("DEFAULT_SERVICE_DURATION", 60)
	v.SetDefault("BUSINESS_HOURS_START", "06:00")
	v.SetDefault("BUSINESS_HOURS_END", "22:00")

	v.SetDefault("ALLOW_OFF_SLOT_BOOKINGS", false)
	v.SetDefault("ALLOW_STAFF_OVERRIDE", true)
	v.SetDefault("AUTO_NO_SHOW", false)
	v.SetDefault("NO_SHOW_GRACE", 15*time.Minute)

	v.SetDefault("MAX_RECURRENCE_OCCURRENCES", 5000)
	v.SetDefault("RECURRENCE_CHECK_HORIZON_DAYS", 90)
	v.SetDefault("MAX_RANGE_DAYS", 62)
	v.SetDefault("NEXT_SLOTS_HORIZON_DAYS", 30)
	v.SetDefault("AVAILABILITY_FANOUT_LIMIT", 8)

	v.SetDefault("LOCK_TTL", 30*time.Second)
	v.SetDefault("LOCK_WAIT_TIMEOUT", 3*time.Second)

	v.SetDefault("UNAVAILABILITY_LIMITS", map[string]any{
		"break":      map[string]any{"minHours": 0.25, "maxHours": 4},
		"personal":   map[string]any{"minHours": 1, "maxHours": 24},
		"sick_leave": map[string]any{"minHours": 4, "maxHours": 720},
		"vacation":   map[string]any{"minHours": 8, "maxHours": 2160},
		"custom":     map[string]any{"minHours": 0.25, "maxHours": 168},
	})
	v.SetDefault("MONTHLY_BLOCK_LIMITS", map[string]int{
		"vacation":   10,
		"sick_leave": 5,
		"personal":   15,
		"break":      60,
		"custom":     20,
	})

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "booking-events")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)
}

// LoadConfig reads config.yaml (from "." or "./config") and the environment
// into AppConfig.
func LoadConfig() error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	switch c.StorageDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("invalid STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.DefaultServiceDuration <= 0 {
		return fmt.Errorf("DEFAULT_SERVICE_DURATION must be positive")
	}
	if c.MaxRecurrenceOccurrences <= 0 {
		return fmt.Errorf("MAX_RECURRENCE_OCCURRENCES must be positive")
	}
	return nil
}

// Brokers splits KAFKA_BROKERS on commas.
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
